package asmcheck

import (
	"strings"
	"testing"

	"github.com/nalgeon/be"
)

const valid = `.data
.align 2 # word align
x:
    .word 14
s:
    .asciiz "hi"
    .space 3

.text
    j main # entry point
f:
    addu $sp, $sp, -12
    sw $ra, 12($sp)
    move $fp, $sp
    lw $v0, x
    beq $v0, $zero, $L1
    b $L2
$L1:
    li $v0, 1
$L2:
$f_epilogue:
    move $sp, $fp
    lw $ra, 12($sp)
    addu $sp, $sp, 12
    jr $ra

.globl main
main:
    jal f
    j exit

exit:
    li $v0, 10
    syscall
`

func TestCheckAcceptsValidProgram(t *testing.T) {
	be.Err(t, Check(valid), nil)
}

func TestLabels(t *testing.T) {
	labels, err := Labels(valid)
	be.Err(t, err, nil)
	for _, name := range []string{"x", "s", "f", "$L1", "$L2", "$f_epilogue", "main", "exit"} {
		if _, ok := labels[name]; !ok {
			t.Errorf("label %q not collected", name)
		}
	}
	be.Equal(t, len(labels), 8)
}

func TestDuplicateLabelRejected(t *testing.T) {
	err := Check("x:\n    .word 1\nx:\n    .word 2\n")
	be.Err(t, err)
	be.True(t, strings.Contains(err.Error(), "duplicate label"))
}

func TestUndefinedBranchTargetRejected(t *testing.T) {
	err := Check(".text\nmain:\n    b $L9\n")
	be.Err(t, err)
	be.True(t, strings.Contains(err.Error(), "undefined label"))
	be.True(t, strings.Contains(err.Error(), "$L9"))
}

func TestEveryBranchFamilyIsChecked(t *testing.T) {
	for _, ins := range []string{
		"b $missing",
		"beq $v0, $v1, $missing",
		"bne $v0, $v1, $missing",
		"blt $v0, $v1, $missing",
		"bgeu $t0, 4, $missing",
		"bltz $t0, $missing",
		"j $missing",
		"jal $missing",
	} {
		err := Check(".text\nmain:\n    " + ins + "\n")
		if err == nil {
			t.Errorf("%q: expected undefined-label error", ins)
		}
	}
}

func TestJumpRegisterNeedsNoLabel(t *testing.T) {
	be.Err(t, Check(".text\nmain:\n    jr $ra\n"), nil)
}

func TestUnknownInstructionRejected(t *testing.T) {
	err := Check(".text\nmain:\n    frobnicate $v0\n")
	be.Err(t, err)
	be.True(t, strings.Contains(err.Error(), "unknown instruction"))
}

func TestUnknownDirectiveRejected(t *testing.T) {
	err := Check(".data\n.dword 7\n")
	be.Err(t, err)
	be.True(t, strings.Contains(err.Error(), "unknown directive"))
}

func TestCommentsAndStringsAreIgnored(t *testing.T) {
	be.Err(t, Check(`.data
msg:
    .asciiz "colon: and # hash inside"
# a full-line comment with b $nowhere in it
.text
main:
    li $v0, 4 # trailing comment
`), nil)
}

func TestIndentedLabelIsCollected(t *testing.T) {
	labels, err := Labels(".text\nmain:\n    $L3:\n")
	be.Err(t, err, nil)
	if _, ok := labels["$L3"]; !ok {
		t.Error("indented label $L3 not collected")
	}
}
