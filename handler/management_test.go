package handler

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
)

func TestUpdateTarget(t *testing.T) {
	env := newTestEnv(t)
	code := env.mustCreate(t, "https://example.com")

	body, _ := json.Marshal(UpdateTargetRequest{
		EditToken: code.EditToken,
		TargetURL: "https://changed.example.com",
	})
	req := httptest.NewRequest(http.MethodPut, "/api/codes/"+code.ID, bytes.NewBuffer(body))
	req = muxSetID(req, code.ID)
	w := httptest.NewRecorder()

	env.handler.UpdateTarget(w, req)

	if w.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200, body: %s", w.Code, w.Body.String())
	}

	stored, _ := env.store.GetCode(context.Background(), code.ID)
	if stored.TargetURL != "https://changed.example.com" {
		t.Errorf("target = %q, update not applied", stored.TargetURL)
	}
}

func TestUpdateTarget_WrongToken(t *testing.T) {
	env := newTestEnv(t)
	code := env.mustCreate(t, "https://example.com")

	body, _ := json.Marshal(UpdateTargetRequest{
		EditToken: "wrong-token",
		TargetURL: "https://attacker.example.com",
	})
	req := httptest.NewRequest(http.MethodPut, "/api/codes/"+code.ID, bytes.NewBuffer(body))
	req = muxSetID(req, code.ID)
	w := httptest.NewRecorder()

	env.handler.UpdateTarget(w, req)

	// Token mismatch must be distinguishable from not-found and 5xx
	if w.Code != http.StatusForbidden {
		t.Fatalf("status = %d, want 403", w.Code)
	}

	stored, _ := env.store.GetCode(context.Background(), code.ID)
	if stored.TargetURL != "https://example.com" {
		t.Errorf("target mutated to %q despite wrong token", stored.TargetURL)
	}
}

func TestUpdateTarget_BadRequests(t *testing.T) {
	env := newTestEnv(t)
	code := env.mustCreate(t, "https://example.com")

	tests := []struct {
		name string
		body string
	}{
		{"Invalid JSON", "not json"},
		{"Missing token", `{"targetURL": "https://example.com"}`},
		{"Invalid target", `{"editToken": "` + code.EditToken + `", "targetURL": "nonsense"}`},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := httptest.NewRequest(http.MethodPut, "/api/codes/"+code.ID, bytes.NewBufferString(tt.body))
			req = muxSetID(req, code.ID)
			w := httptest.NewRecorder()

			env.handler.UpdateTarget(w, req)

			if w.Code != http.StatusBadRequest {
				t.Errorf("status = %d, want 400", w.Code)
			}
		})
	}
}

func TestUpdateTarget_NotFound(t *testing.T) {
	env := newTestEnv(t)

	body, _ := json.Marshal(UpdateTargetRequest{
		EditToken: "sometoken",
		TargetURL: "https://example.com",
	})
	req := httptest.NewRequest(http.MethodPut, "/api/codes/nosuch", bytes.NewBuffer(body))
	req = muxSetID(req, "nosuch")
	w := httptest.NewRecorder()

	env.handler.UpdateTarget(w, req)

	if w.Code != http.StatusNotFound {
		t.Errorf("status = %d, want 404", w.Code)
	}
}

func TestSetBlocked_ThenResolveRedirectsToBlockedPage(t *testing.T) {
	env := newTestEnv(t)
	code := env.mustCreate(t, "https://example.com")

	body, _ := json.Marshal(SetBlockedRequest{EditToken: code.EditToken, Blocked: true})
	req := httptest.NewRequest(http.MethodPost, "/api/codes/"+code.ID+"/block", bytes.NewBuffer(body))
	req = muxSetID(req, code.ID)
	w := httptest.NewRecorder()

	env.handler.SetBlocked(w, req)

	if w.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200", w.Code)
	}

	resolveReq := httptest.NewRequest(http.MethodGet, "/resolve?id="+code.ID, nil)
	resolveW := httptest.NewRecorder()
	env.handler.Resolve(resolveW, resolveReq)

	if resolveW.Code != http.StatusFound {
		t.Fatalf("resolve status = %d, want 302", resolveW.Code)
	}
	if location := resolveW.Header().Get("Location"); location != "/blocked" {
		t.Errorf("Location = %q, want /blocked", location)
	}
}

func TestSetBlocked_WrongToken(t *testing.T) {
	env := newTestEnv(t)
	code := env.mustCreate(t, "https://example.com")

	body, _ := json.Marshal(SetBlockedRequest{EditToken: "wrong", Blocked: true})
	req := httptest.NewRequest(http.MethodPost, "/api/codes/"+code.ID+"/block", bytes.NewBuffer(body))
	req = muxSetID(req, code.ID)
	w := httptest.NewRecorder()

	env.handler.SetBlocked(w, req)

	if w.Code != http.StatusForbidden {
		t.Errorf("status = %d, want 403", w.Code)
	}
}

func TestDeleteCode(t *testing.T) {
	env := newTestEnv(t)
	code := env.mustCreate(t, "https://example.com")

	body, _ := json.Marshal(DeleteCodeRequest{EditToken: code.EditToken})
	req := httptest.NewRequest(http.MethodDelete, "/api/codes/"+code.ID, bytes.NewBuffer(body))
	req = muxSetID(req, code.ID)
	w := httptest.NewRecorder()

	env.handler.DeleteCode(w, req)

	if w.Code != http.StatusNoContent {
		t.Fatalf("status = %d, want 204", w.Code)
	}

	getReq := httptest.NewRequest(http.MethodGet, "/api/codes/"+code.ID, nil)
	getReq = muxSetID(getReq, code.ID)
	getW := httptest.NewRecorder()
	env.handler.GetCode(getW, getReq)

	if getW.Code != http.StatusNotFound {
		t.Errorf("status after delete = %d, want 404", getW.Code)
	}
}
