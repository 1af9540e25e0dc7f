package corpus

import (
	"encoding/json"
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/jimezsa/jobminer/internal/models"
)

// Snapshot is a saved set of collected job descriptions.
type Snapshot struct {
	Keyword      string                  `json:"keyword"`
	Location     string                  `json:"location"`
	CollectedAt  time.Time               `json:"collected_at"`
	Links        []models.JobLink        `json:"links"`
	Descriptions []models.JobDescription `json:"descriptions"`
}

// Texts returns the description texts in collection order.
func (s Snapshot) Texts() []string {
	texts := make([]string, 0, len(s.Descriptions))
	for _, desc := range s.Descriptions {
		texts = append(texts, desc.Text)
	}
	return texts
}

// ReadSnapshot reads a snapshot written by WriteSnapshot.
func ReadSnapshot(path string) (Snapshot, error) {
	if strings.TrimSpace(path) == "" {
		return Snapshot{}, fmt.Errorf("path is required")
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return Snapshot{}, err
	}
	if len(strings.TrimSpace(string(data))) == 0 {
		return Snapshot{}, fmt.Errorf("snapshot %s is empty", path)
	}

	var snapshot Snapshot
	if err := json.Unmarshal(data, &snapshot); err != nil {
		return Snapshot{}, fmt.Errorf("parse snapshot %s: %w", path, err)
	}
	return snapshot, nil
}

// WriteSnapshot writes snapshot as pretty JSON.
func WriteSnapshot(path string, snapshot Snapshot) error {
	if strings.TrimSpace(path) == "" {
		return fmt.Errorf("path is required")
	}
	if snapshot.Links == nil {
		snapshot.Links = []models.JobLink{}
	}
	if snapshot.Descriptions == nil {
		snapshot.Descriptions = []models.JobDescription{}
	}
	data, err := json.MarshalIndent(snapshot, "", "  ")
	if err != nil {
		return err
	}
	return os.WriteFile(path, append(data, '\n'), 0o644)
}
