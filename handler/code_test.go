package handler

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
)

func TestCreateCode(t *testing.T) {
	env := newTestEnv(t)

	body, _ := json.Marshal(map[string]string{"targetURL": "https://example.com"})
	req := httptest.NewRequest(http.MethodPost, "/api/codes", bytes.NewBuffer(body))
	w := httptest.NewRecorder()

	env.handler.CreateCode(w, req)

	if w.Code != http.StatusCreated {
		t.Fatalf("status = %d, want 201, body: %s", w.Code, w.Body.String())
	}

	var resp CodeResponse
	if err := json.Unmarshal(w.Body.Bytes(), &resp); err != nil {
		t.Fatalf("unmarshal response: %v", err)
	}
	if len(resp.Code.ID) != 6 {
		t.Errorf("id length = %d, want 6", len(resp.Code.ID))
	}
	if len(resp.Code.EditToken) != 32 {
		t.Errorf("edit token length = %d, want 32", len(resp.Code.EditToken))
	}
	if !strings.Contains(resp.ResolveURL, "/resolve?id="+resp.Code.ID) {
		t.Errorf("resolveURL = %q does not point at the resolver", resp.ResolveURL)
	}
	if !strings.Contains(resp.QRCodeURL, "/qr?id=") {
		t.Errorf("qrCodeURL = %q does not point at the QR endpoint", resp.QRCodeURL)
	}
}

func TestCreateCode_InvalidInput(t *testing.T) {
	env := newTestEnv(t)

	tests := []struct {
		name string
		body string
	}{
		{"Invalid JSON", `{"targetURL": invalid}`},
		{"Empty target", `{"targetURL": ""}`},
		{"Bad scheme", `{"targetURL": "ftp://example.com"}`},
		{"No host", `{"targetURL": "https://"}`},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := httptest.NewRequest(http.MethodPost, "/api/codes", strings.NewReader(tt.body))
			w := httptest.NewRecorder()

			env.handler.CreateCode(w, req)

			if w.Code != http.StatusBadRequest {
				t.Errorf("status = %d, want 400", w.Code)
			}
		})
	}
}

// Creating a code and resolving its id must land on the created target.
func TestCreateThenResolve_RoundTrip(t *testing.T) {
	env := newTestEnv(t)

	body, _ := json.Marshal(map[string]string{"targetURL": "https://example.com/launch"})
	req := httptest.NewRequest(http.MethodPost, "/api/codes", bytes.NewBuffer(body))
	w := httptest.NewRecorder()
	env.handler.CreateCode(w, req)

	var resp CodeResponse
	if err := json.Unmarshal(w.Body.Bytes(), &resp); err != nil {
		t.Fatalf("unmarshal response: %v", err)
	}

	resolveReq := httptest.NewRequest(http.MethodGet, "/resolve?id="+resp.Code.ID, nil)
	resolveW := httptest.NewRecorder()
	env.handler.Resolve(resolveW, resolveReq)

	if resolveW.Code != http.StatusMovedPermanently {
		t.Fatalf("resolve status = %d, want 301", resolveW.Code)
	}
	if location := resolveW.Header().Get("Location"); location != "https://example.com/launch" {
		t.Errorf("Location = %q, want the created target", location)
	}
}

func TestGetCode_HidesEditToken(t *testing.T) {
	env := newTestEnv(t)
	code := env.mustCreate(t, "https://example.com")

	req := httptest.NewRequest(http.MethodGet, "/api/codes/"+code.ID, nil)
	req = muxSetID(req, code.ID)
	w := httptest.NewRecorder()

	env.handler.GetCode(w, req)

	if w.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200", w.Code)
	}
	if strings.Contains(w.Body.String(), code.EditToken) {
		t.Error("public read leaked the edit token")
	}
}

func TestGetCode_NotFound(t *testing.T) {
	env := newTestEnv(t)

	req := httptest.NewRequest(http.MethodGet, "/api/codes/nosuch", nil)
	req = muxSetID(req, "nosuch")
	w := httptest.NewRecorder()

	env.handler.GetCode(w, req)

	if w.Code != http.StatusNotFound {
		t.Errorf("status = %d, want 404", w.Code)
	}
}

func TestLookupCodes(t *testing.T) {
	env := newTestEnv(t)
	first := env.mustCreate(t, "https://one.example.com")
	second := env.mustCreate(t, "https://two.example.com")

	// One rich entry (by id), one legacy entry (token only)
	body, _ := json.Marshal(LookupRequest{
		IDs:        []string{first.ID},
		EditTokens: []string{second.EditToken, "stale-token"},
	})
	req := httptest.NewRequest(http.MethodPost, "/api/codes/lookup", bytes.NewBuffer(body))
	w := httptest.NewRecorder()

	env.handler.LookupCodes(w, req)

	if w.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200", w.Code)
	}

	var resp struct {
		Codes []struct {
			ID        string `json:"id"`
			EditToken string `json:"edit_token"`
		} `json:"codes"`
		Total int `json:"total"`
	}
	if err := json.Unmarshal(w.Body.Bytes(), &resp); err != nil {
		t.Fatalf("unmarshal response: %v", err)
	}
	if resp.Total != 2 {
		t.Fatalf("total = %d, want 2", resp.Total)
	}
	if resp.Codes[0].ID != first.ID || resp.Codes[0].EditToken != "" {
		t.Errorf("id-matched record must be public: %+v", resp.Codes[0])
	}
	if resp.Codes[1].ID != second.ID || resp.Codes[1].EditToken != second.EditToken {
		t.Errorf("token-matched record must carry the token for migration: %+v", resp.Codes[1])
	}
}
