package vm

import "fmt"

type Opcode uint8

const (
	OpMovConst      Opcode = iota
	OpMov           Opcode = iota
	OpAdd           Opcode = iota
	OpAddConst      Opcode = iota
	OpCall          Opcode = iota
	OpRet           Opcode = iota
	OpBreak         Opcode = iota
	OpJmp           Opcode = iota
	OpSetTask       Opcode = iota
	OpJnz           Opcode = iota
	OpCondJmp       Opcode = iota
	OpSetPalette    Opcode = iota
	OpResetTasks    Opcode = iota
	OpSelectPage    Opcode = iota
	OpFillPage      Opcode = iota
	OpCopyPage      Opcode = iota
	OpUpdateDisplay Opcode = iota
	OpHalt          Opcode = iota
	OpDrawString    Opcode = iota
	OpSub           Opcode = iota
	OpAnd           Opcode = iota
	OpOr            Opcode = iota
	OpShl           Opcode = iota
	OpShr           Opcode = iota
	OpPlaySound     Opcode = iota
	OpUpdateMemlist Opcode = iota
	OpPlayMusic     Opcode = iota

	numOpcodes = int(OpPlayMusic) + 1

	// Opcodes with either top bit set draw a shape, the operands are packed
	// into the opcode itself
	opDrawShapeShort = 0x80
	opDrawShapeLong  = 0x40
)

var opcodeNames = [numOpcodes]string{
	"mov_const", "mov", "add", "add_const",
	"call", "ret", "break", "jmp",
	"set_task", "jnz", "cond_jmp", "set_palette",
	"reset_tasks", "select_page", "fill_page", "copy_page",
	"update_display", "halt", "draw_string", "sub",
	"and", "or", "shl", "shr",
	"play_sound", "update_memlist", "play_music",
}

func (op Opcode) String() string {
	switch {
	case op&opDrawShapeShort != 0:
		return "draw_shape_short"
	case op&opDrawShapeLong != 0:
		return "draw_shape"
	case int(op) < numOpcodes:
		return opcodeNames[op]
	default:
		return fmt.Sprintf("op_%02x", uint8(op))
	}
}
