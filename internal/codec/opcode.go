package codec

// x86 opcodes of the recognized instruction patterns.
const (
	opMovEaxMoffs32 = 0xA1 // mov eax, [moffs32]
	opMovEaxImm32   = 0xB8 // mov eax, imm32
	opPushImm8      = 0x6A // push imm8

	// mov r/m32, imm32 opcode and ModRM byte, read as a little-endian word.
	opMovEbxDisp8  = 0x43C7 // mov dword [ebx+disp8], imm32
	opMovEbxDisp32 = 0x83C7 // mov dword [ebx+disp32], imm32
	opMovEaxDisp32 = 0x80C7 // mov dword [eax+disp32], imm32
)
