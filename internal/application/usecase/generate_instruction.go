package usecase

import (
	"context"
	"fmt"
	"strings"

	"go.uber.org/zap"

	"github.com/colmeia/hive/internal/domain/service"
	"github.com/colmeia/hive/pkg/errors"
)

// generatorInstruction frames the model as an agent-instruction author.
const generatorInstruction = "Você é um especialista em criar instruções para agentes de IA."

const generatorPrompt = "Crie uma system instruction concisa e profissional para um agente de IA " +
	"com as seguintes características: %s. " +
	"A system instruction deve definir claramente o papel, especialidade e comportamento do agente. " +
	"Retorne apenas a system instruction, sem explicações adicionais."

// GenerateInstructionUseCase drafts an agent's system instruction from
// a free-form description, using the same model client as the chat flow.
type GenerateInstructionUseCase struct {
	model  service.ModelClient
	logger *zap.Logger
}

// NewGenerateInstructionUseCase creates the instruction generator.
func NewGenerateInstructionUseCase(model service.ModelClient, logger *zap.Logger) *GenerateInstructionUseCase {
	return &GenerateInstructionUseCase{model: model, logger: logger}
}

// Execute returns the generated instruction text.
func (uc *GenerateInstructionUseCase) Execute(ctx context.Context, description string) (string, error) {
	description = strings.TrimSpace(description)
	if description == "" {
		return "", errors.NewInvalidInputError("agent description cannot be empty")
	}

	instruction, err := uc.model.Complete(ctx, fmt.Sprintf(generatorPrompt, description), "", generatorInstruction)
	if err != nil {
		uc.logger.Error("Instruction generation failed", zap.Error(err))
		return "", err
	}
	return strings.TrimSpace(instruction), nil
}
