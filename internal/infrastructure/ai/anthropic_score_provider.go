package ai

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"regexp"
	"strings"
	"time"

	"github.com/shopspring/decimal"

	"github.com/jhoicas/ecotrace-api/internal/application/ports"
)

// Verificar en tiempo de compilación que AnthropicScoreProvider implementa ScoreProvider.
var _ ports.ScoreProvider = (*AnthropicScoreProvider)(nil)

const (
	anthropicMessagesURL = "https://api.anthropic.com/v1/messages"
	anthropicVersion     = "2023-06-01"

	anthropicSystemPrompt = `Eres un auditor de sostenibilidad de productos de consumo.
Devuelve ÚNICAMENTE un objeto JSON válido (sin markdown, sin bloques de código` + " ```json" + `) con esta estructura exacta:
{
  "environment_score": <número entre 0 y 100>,
  "ethics_score": <número entre 0 y 100>,
  "safety_score": <número entre 0 y 100>,
  "cost_score": <número entre 0 y 100>,
  "final_score": <número entre 0 y 100>,
  "reasoning": "<explicación concisa en español, máximo 300 caracteres>"
}

Reglas:
- Evalúa la composición de materiales declarada del lote.
- final_score resume los cuatro componentes; no tiene que ser su promedio exacto.
- No incluyas texto fuera del JSON. Solo el objeto JSON.`
)

// AnthropicScoreProvider adaptador que implementa ScoreProvider usando la API REST de Anthropic (Claude).
// Usa net/http de la librería estándar de Go; no requiere el SDK oficial.
type AnthropicScoreProvider struct {
	apiKey     string
	model      string
	endpoint   string
	httpClient *http.Client
}

// NewAnthropicScoreProvider construye el adaptador.
// Si apiKey está vacío las llamadas devuelven error descriptivo en lugar de panic.
func NewAnthropicScoreProvider(apiKey, model string) *AnthropicScoreProvider {
	return &AnthropicScoreProvider{
		apiKey:   apiKey,
		model:    model,
		endpoint: anthropicMessagesURL,
		httpClient: &http.Client{
			// Timeout de red; el handler impone además el deadline de la petición.
			Timeout: 25 * time.Second,
		},
	}
}

// WithEndpoint cambia la URL de la API (proxies internos, pruebas).
func (s *AnthropicScoreProvider) WithEndpoint(url string) *AnthropicScoreProvider {
	s.endpoint = url
	return s
}

// ── Estructuras internas del protocolo Anthropic Messages API ─────────────────

type anthropicRequest struct {
	Model     string             `json:"model"`
	MaxTokens int                `json:"max_tokens"`
	System    string             `json:"system"`
	Messages  []anthropicMessage `json:"messages"`
}

type anthropicMessage struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

type anthropicResponse struct {
	Content []struct {
		Type string `json:"type"`
		Text string `json:"text"`
	} `json:"content"`
	Error *struct {
		Type    string `json:"type"`
		Message string `json:"message"`
	} `json:"error"`
}

type scorePayload struct {
	EnvironmentScore decimal.Decimal `json:"environment_score"`
	EthicsScore      decimal.Decimal `json:"ethics_score"`
	SafetyScore      decimal.Decimal `json:"safety_score"`
	CostScore        decimal.Decimal `json:"cost_score"`
	FinalScore       decimal.Decimal `json:"final_score"`
	Reasoning        string          `json:"reasoning"`
}

// jsonBlockRe extrae el primer objeto JSON del texto aunque Claude lo envuelva en markdown.
var jsonBlockRe = regexp.MustCompile(`(?s)\{.*\}`)

// ── Implementación del puerto ─────────────────────────────────────────────────

// GenerateScore envía producto, código y composición del lote a Claude y devuelve el puntaje.
func (s *AnthropicScoreProvider) GenerateScore(ctx context.Context, in ports.ScoreRequest) (*ports.ScoreResult, error) {
	if s.apiKey == "" {
		return nil, fmt.Errorf("AI: ANTHROPIC_API_KEY no configurado")
	}

	userContent := fmt.Sprintf("Producto: %s\nLote: %s\nComposición: %s", in.ProductName, in.BatchCode, in.MaterialInfo)

	payload := anthropicRequest{
		Model:     s.model,
		MaxTokens: 1024,
		System:    anthropicSystemPrompt,
		Messages: []anthropicMessage{
			{Role: "user", Content: userContent},
		},
	}

	body, err := json.Marshal(payload)
	if err != nil {
		return nil, fmt.Errorf("AI: serializar request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, s.endpoint, bytes.NewReader(body))
	if err != nil {
		return nil, fmt.Errorf("AI: crear HTTP request: %w", err)
	}
	req.Header.Set("x-api-key", s.apiKey)
	req.Header.Set("anthropic-version", anthropicVersion)
	req.Header.Set("content-type", "application/json")

	resp, err := s.httpClient.Do(req)
	if err != nil {
		if ctx.Err() != nil {
			return nil, fmt.Errorf("AI: timeout o cancelación: %w", ctx.Err())
		}
		return nil, fmt.Errorf("AI: llamada HTTP fallida: %w", err)
	}
	defer resp.Body.Close()

	rawBody, err := io.ReadAll(io.LimitReader(resp.Body, 64*1024))
	if err != nil {
		return nil, fmt.Errorf("AI: leer respuesta: %w", err)
	}

	if resp.StatusCode != http.StatusOK {
		var errResp anthropicResponse
		if jsonErr := json.Unmarshal(rawBody, &errResp); jsonErr == nil && errResp.Error != nil {
			return nil, fmt.Errorf("AI: Anthropic error (%s): %s", errResp.Error.Type, errResp.Error.Message)
		}
		return nil, fmt.Errorf("AI: Anthropic HTTP %d: %s", resp.StatusCode, string(rawBody))
	}

	var anthResp anthropicResponse
	if err := json.Unmarshal(rawBody, &anthResp); err != nil {
		return nil, fmt.Errorf("AI: deserializar respuesta Anthropic: %w", err)
	}
	if len(anthResp.Content) == 0 {
		return nil, fmt.Errorf("AI: Claude devolvió respuesta vacía")
	}

	rawText := anthResp.Content[0].Text
	cleanJSON := extractJSON(rawText)
	if cleanJSON == "" {
		return nil, fmt.Errorf("AI: no se encontró JSON válido en la respuesta del modelo (respuesta: %s)", rawText)
	}

	var p scorePayload
	if err := json.Unmarshal([]byte(cleanJSON), &p); err != nil {
		return nil, fmt.Errorf("AI: parsear JSON de puntaje: %w (JSON extraído: %s)", err, cleanJSON)
	}

	return &ports.ScoreResult{
		EnvironmentScore: clampScore(p.EnvironmentScore),
		EthicsScore:      clampScore(p.EthicsScore),
		SafetyScore:      clampScore(p.SafetyScore),
		CostScore:        clampScore(p.CostScore),
		FinalScore:       clampScore(p.FinalScore),
		Reasoning:        strings.TrimSpace(p.Reasoning),
	}, nil
}

var hundred = decimal.NewFromInt(100)

// clampScore limita a [0, 100] con dos decimales.
func clampScore(d decimal.Decimal) decimal.Decimal {
	if d.IsNegative() {
		return decimal.Zero
	}
	if d.GreaterThan(hundred) {
		return hundred
	}
	return d.Round(2)
}

// extractJSON extrae el primer objeto JSON bien formado de un texto libre.
// Primero quita bloques de código markdown; si no queda un objeto al inicio, usa jsonBlockRe.
func extractJSON(text string) string {
	text = strings.TrimSpace(text)
	if idx := strings.Index(text, "```"); idx != -1 {
		after := text[idx+3:]
		if nl := strings.Index(after, "\n"); nl != -1 {
			after = after[nl+1:]
		}
		if end := strings.LastIndex(after, "```"); end != -1 {
			after = after[:end]
		}
		text = strings.TrimSpace(after)
	}

	if strings.HasPrefix(text, "{") {
		return text
	}
	return strings.TrimSpace(jsonBlockRe.FindString(text))
}
