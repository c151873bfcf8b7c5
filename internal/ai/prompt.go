package ai

import (
	"encoding/json"
	"fmt"

	"github.com/fieldops/backend/internal/models"
)

// SystemPrompt builds the instructions sent ahead of every assistant call,
// embedding both tables as JSON.
func SystemPrompt(salesmen []models.Salesman, devices []models.RepairDevice) (string, error) {
	snapshot := struct {
		Salesmen      []models.Salesman     `json:"salesmen"`
		RepairDevices []models.RepairDevice `json:"repair_devices"`
	}{salesmen, devices}
	if snapshot.Salesmen == nil {
		snapshot.Salesmen = []models.Salesman{}
	}
	if snapshot.RepairDevices == nil {
		snapshot.RepairDevices = []models.RepairDevice{}
	}
	b, err := json.Marshal(snapshot)
	if err != nil {
		return "", fmt.Errorf("marshal snapshot: %w", err)
	}
	return fmt.Sprintf("You are a helpful assistant. Use this JSON data: %s. "+
		"Answer in concise, natural language without repeating the JSON. "+
		"Keep context from prior questions and stick to the company and branch mentioned last "+
		"unless the new question specifies otherwise.", b), nil
}
