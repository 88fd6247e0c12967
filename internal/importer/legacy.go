package importer

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/flemdev/portal-ppe/internal/store"
)

// LegacyStoreClient queries the external legacy system of record:
// GET <base>/{tenant}/beneficiaries?condition=OR&matriculaSAEB=[...]&cpf=[...]
type LegacyStoreClient struct {
	baseURL string
	client  *http.Client
}

func NewLegacyStoreClient(baseURL string, timeout time.Duration) *LegacyStoreClient {
	return &LegacyStoreClient{
		baseURL: strings.TrimRight(baseURL, "/"),
		client:  &http.Client{Timeout: timeout},
	}
}

type legacyStatus struct {
	Nome string `json:"nome"`
}

type legacyPlacement struct {
	Situacao     *legacyStatus `json:"Situacao"`
	SituacaoVaga *legacyStatus `json:"situacaoVaga"`
}

// The legacy API is inconsistent about casing and key names across
// deployments, so both variants of every field are decoded.
type legacyBeneficiary struct {
	MatriculaSAEB string            `json:"matriculaSAEB"`
	MatriculaSec  string            `json:"matriculaSec"`
	Nome          string            `json:"nome"`
	CPF           json.RawMessage   `json:"cpf"`
	VagaUpper     []legacyPlacement `json:"Vaga"`
	VagaLower     []legacyPlacement `json:"vaga"`
}

type legacyResponse struct {
	Data struct {
		Query []legacyBeneficiary `json:"query"`
	} `json:"data"`
}

func (c *LegacyStoreClient) FindBeneficiaries(ctx context.Context, tenant string, enrollments, cpfs []string) ([]store.ReconRecord, error) {
	params := url.Values{}
	params.Set("condition", "OR")
	if len(enrollments) > 0 {
		encoded, err := json.Marshal(enrollments)
		if err != nil {
			return nil, err
		}
		params.Set("matriculaSAEB", string(encoded))
	}
	if len(cpfs) > 0 {
		encoded, err := json.Marshal(cpfs)
		if err != nil {
			return nil, err
		}
		params.Set("cpf", string(encoded))
	}

	endpoint := fmt.Sprintf("%s/%s/beneficiarios?%s", c.baseURL, tenant, params.Encode())
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint, nil)
	if err != nil {
		return nil, err
	}

	resp, err := c.client.Do(req)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("legacy store returned status %d", resp.StatusCode)
	}

	var payload legacyResponse
	if err := json.NewDecoder(resp.Body).Decode(&payload); err != nil {
		return nil, fmt.Errorf("failed to decode legacy store response: %w", err)
	}

	records := make([]store.ReconRecord, 0, len(payload.Data.Query))
	for _, b := range payload.Data.Query {
		records = append(records, store.ReconRecord{
			Enrollment: b.enrollment(tenant),
			Name:       b.Nome,
			CPF:        rawToString(b.CPF),
			Status:     b.status(),
		})
	}
	return records, nil
}

// Bahia's legacy deployment keys beneficiaries by the SAEB enrollment.
func (b legacyBeneficiary) enrollment(tenant string) string {
	if tenant == "ba" && b.MatriculaSAEB != "" {
		return b.MatriculaSAEB
	}
	return b.MatriculaSec
}

func (b legacyBeneficiary) status() string {
	placements := b.VagaUpper
	if len(placements) == 0 {
		placements = b.VagaLower
	}
	if len(placements) == 0 {
		return ""
	}
	if placements[0].Situacao != nil {
		return placements[0].Situacao.Nome
	}
	if placements[0].SituacaoVaga != nil {
		return placements[0].SituacaoVaga.Nome
	}
	return ""
}

// CPF may arrive as a JSON number or string.
func rawToString(raw json.RawMessage) string {
	if len(raw) == 0 || string(raw) == "null" {
		return ""
	}
	var s string
	if err := json.Unmarshal(raw, &s); err == nil {
		return s
	}
	return strings.Trim(string(raw), `"`)
}
