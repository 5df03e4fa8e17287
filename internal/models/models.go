// Package models defines the persisted entities.
package models

import (
	"strings"
	"time"
)

// GlossaryTerm is one organizational terminology override. Terms are loaded
// once at startup into the in-memory resolver snapshot; rows are only written
// through the import command or the management API.
//
// Scope is one of "tenant:<id>", "channel:<id>", or "user:<id>". Entries with
// any other scope shape are ignored by the resolver.
type GlossaryTerm struct {
	ID         uint      `json:"id" gorm:"primaryKey"`
	SourceTerm string    `json:"source_term" gorm:"type:varchar(255);not null;index:idx_glossary_source_scope,unique"`
	TargetTerm string    `json:"target_term" gorm:"type:varchar(255);not null;index:idx_glossary_source_scope,unique"`
	Scope      string    `json:"scope" gorm:"type:varchar(255);not null;index:idx_glossary_source_scope,unique"`
	CreatedAt  time.Time `json:"created_at"`
	UpdatedAt  time.Time `json:"updated_at"`
}

// BackendProfile is the immutable configuration of one model backend in the
// routing pool. SortOrder fixes the fallback chain; routing never reorders.
type BackendProfile struct {
	ID uint `json:"id" gorm:"primaryKey"`
	// Identifier is the stable backend name reported in results and audit rows.
	Identifier string `json:"identifier" gorm:"type:varchar(100);not null;uniqueIndex"`
	// BackendType selects the implementation: "openai" or "mock".
	BackendType string `json:"backend_type" gorm:"type:varchar(50);not null;default:openai"`
	// UpstreamURL is the base URL of the provider API (openai type only).
	UpstreamURL string `json:"upstream_url" gorm:"type:varchar(500)"`
	// APIKey authenticates against the upstream (openai type only).
	APIKey string `json:"-" gorm:"type:varchar(500)"`
	// Model is the upstream model name used for translate/rewrite calls.
	Model string `json:"model" gorm:"type:varchar(200)"`
	// CostPerChar is the estimated cost per input character, in micro-units.
	CostPerChar int64 `json:"cost_per_char" gorm:"not null;default:10"`
	// TargetLatencyMs is the provider's advertised latency target.
	TargetLatencyMs int `json:"target_latency_ms" gorm:"not null;default:2000"`
	// Reliability is the operator-assigned score in [0,1], informational only.
	Reliability float64 `json:"reliability" gorm:"not null;default:0.99"`
	// Regions is a comma-separated allow-list of serving regions.
	Regions string `json:"regions" gorm:"type:varchar(500)"`
	// Certifications is a comma-separated list of held compliance certifications.
	Certifications string `json:"certifications" gorm:"type:varchar(500)"`
	// SortOrder is the fixed position in the fallback chain (ascending).
	SortOrder int  `json:"sort_order" gorm:"not null;default:0;index"`
	Enabled   bool `json:"enabled" gorm:"not null;default:true"`

	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// RegionList splits the Regions column into a slice.
func (p *BackendProfile) RegionList() []string {
	return splitCSV(p.Regions)
}

// CertificationList splits the Certifications column into a slice.
func (p *BackendProfile) CertificationList() []string {
	return splitCSV(p.Certifications)
}

// TranslationLog is one audit record per completed routing attempt. Rows are
// written asynchronously by the audit sink; a write failure never affects the
// pipeline result.
type TranslationLog struct {
	ID                     uint      `json:"id" gorm:"primaryKey"`
	RequestID              string    `json:"request_id" gorm:"type:varchar(36);index"`
	TenantID               string    `json:"tenant_id" gorm:"type:varchar(100);index"`
	UserID                 string    `json:"user_id" gorm:"type:varchar(100)"`
	BackendID              string    `json:"backend_id" gorm:"type:varchar(100)"`
	SourceLanguage         string    `json:"source_language" gorm:"type:varchar(20)"`
	TargetLanguage         string    `json:"target_language" gorm:"type:varchar(20)"`
	OriginalText           string    `json:"original_text" gorm:"type:text"`
	FinalText              string    `json:"final_text" gorm:"type:text"`
	CostMicros             int64     `json:"cost_micros"`
	LatencyMs              int64     `json:"latency_ms"`
	AdditionalTranslations string    `json:"additional_translations" gorm:"type:text"`
	CreatedAt              time.Time `json:"created_at" gorm:"index"`
}

func splitCSV(s string) []string {
	if s == "" {
		return nil
	}
	parts := strings.Split(s, ",")
	result := make([]string, 0, len(parts))
	for _, p := range parts {
		if trimmed := strings.TrimSpace(p); trimmed != "" {
			result = append(result, trimmed)
		}
	}
	return result
}
