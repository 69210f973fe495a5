package usecase

import (
	"context"
	"strings"
	"testing"

	"github.com/colmeia/hive/pkg/errors"
)

// === GenerateInstruction ===

func TestGenerateInstruction(t *testing.T) {
	model := &fakeModel{respond: func(int, string) (string, error) {
		return "  Você é um tradutor técnico.  ", nil
	}}
	uc := NewGenerateInstructionUseCase(model, testLogger())

	got, err := uc.Execute(context.Background(), "um tradutor técnico")
	if err != nil {
		t.Fatalf("Execute: %v", err)
	}
	if got != "Você é um tradutor técnico." {
		t.Errorf("result should be trimmed, got %q", got)
	}

	call := model.calls[0]
	if !strings.Contains(call.Prompt, "um tradutor técnico") {
		t.Errorf("prompt should embed the description: %q", call.Prompt)
	}
	if !strings.Contains(call.Instruction, "especialista em criar instruções") {
		t.Errorf("generator framing missing: %q", call.Instruction)
	}
	if call.Context != "" {
		t.Errorf("instruction generation carries no memory context, got %q", call.Context)
	}
}

func TestGenerateInstruction_EmptyDescription(t *testing.T) {
	uc := NewGenerateInstructionUseCase(&fakeModel{}, testLogger())
	if _, err := uc.Execute(context.Background(), "   "); !errors.IsInvalidInput(err) {
		t.Errorf("expected INVALID_INPUT, got %v", err)
	}
}

func TestGenerateInstruction_ModelFailure(t *testing.T) {
	model := &fakeModel{respond: func(int, string) (string, error) {
		return "", errors.NewTransportError("model API request failed", nil)
	}}
	uc := NewGenerateInstructionUseCase(model, testLogger())
	if _, err := uc.Execute(context.Background(), "desc"); !errors.IsTransport(err) {
		t.Errorf("expected TRANSPORT_ERROR, got %v", err)
	}
}
