package audit

import (
	"encoding/json"
	"fmt"
	"log"
	"os"
	"path/filepath"
	"time"

	"github.com/google/uuid"

	"github.com/mrlokans/schooldesk/internal/entities"
)

// PayloadDump is what the Auditor writes for an undecodable upstream value.
type PayloadDump struct {
	Service   entities.Service `json:"service"`
	Domain    entities.Domain  `json:"domain"`
	Field     string           `json:"field"`
	Value     any              `json:"value"`
	CreatedAt time.Time        `json:"created_at"`
}

// Auditor saves upstream payloads that decoders refused to classify, so new
// provider shapes can be examined offline.
type Auditor struct {
	AuditDir string
}

func NewAuditor(auditDir string) *Auditor {
	return &Auditor{
		AuditDir: auditDir,
	}
}

// SaveJSON writes data as indented JSON to "<prefix>-<uuid>.json" and returns
// the file name.
func (a *Auditor) SaveJSON(prefix string, data any) (string, error) {
	if err := a.ensureAuditDir(); err != nil {
		return "", fmt.Errorf("failed to ensure audit directory: %w", err)
	}

	filename := fmt.Sprintf("%s-%s.json", prefix, uuid.NewString())
	path := filepath.Join(a.AuditDir, filename)

	jsonData, err := json.MarshalIndent(data, "", "  ")
	if err != nil {
		return "", fmt.Errorf("failed to marshal data to JSON: %w", err)
	}

	if err := os.WriteFile(path, jsonData, 0644); err != nil {
		return "", fmt.Errorf("failed to write audit file: %w", err)
	}

	log.Printf("[AUDIT] Saved %s", path)
	return filename, nil
}

// DumpPayload implements the dispatcher's payload sink.
func (a *Auditor) DumpPayload(dump PayloadDump) {
	if dump.CreatedAt.IsZero() {
		dump.CreatedAt = time.Now()
	}
	if _, err := a.SaveJSON(fmt.Sprintf("%s-%s", dump.Service, dump.Domain), dump); err != nil {
		log.Printf("[AUDIT] Failed to save undecodable %s %s payload: %v", dump.Service, dump.Field, err)
	}
}

func (a *Auditor) ensureAuditDir() error {
	return os.MkdirAll(a.AuditDir, 0755)
}
