package ai

import (
	"context"
	"fmt"
)

// MockAssistant returns canned answers picked by a hash of the prompt, so
// the same question always gets the same reply.
type MockAssistant struct {
	ModelVersion string
}

var mockAnswers = []string{
	"I could not match that to a report, try asking how many devices are in repair.",
	"Try narrowing it down by company or branch, for example ALSAD Jeddah.",
	"That needs a closer look at the records; ask for a list first.",
}

func (m MockAssistant) Ask(ctx context.Context, prompt string, history []ChatMessage) (string, error) {
	if err := ctx.Err(); err != nil {
		return "", err
	}
	h := hashString(prompt)
	answer := mockAnswers[int(h%uint64(len(mockAnswers)))]
	if m.ModelVersion != "" {
		answer = fmt.Sprintf("%s (%s)", answer, m.ModelVersion)
	}
	return answer, nil
}
