package sync

import (
	"bytes"
	"context"
	"encoding/base64"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
)

// HTTPTransport is a [Transport] implementation that speaks JSON over
// HTTP to a zero-knowledge sync server. It never constructs or parses
// an item's plaintext; [Record.EncryptedBlob] passes through as an
// opaque base64 field.
type HTTPTransport struct {
	baseURL string
	token   string
	client  *http.Client
}

// NewHTTPTransport returns a transport that authenticates every
// request with an `Authorization: Bearer <token>` header. token is
// ordinarily the access token issued for this device and persisted in
// [github.com/minsu-steven-kim/keydrop2/keydropstore.DeviceState].
func NewHTTPTransport(baseURL, token string) *HTTPTransport {
	return &HTTPTransport{
		baseURL: baseURL,
		token:   token,
		client:  &http.Client{Timeout: DefaultNetworkTimeout},
	}
}

type wireRecord struct {
	ID            string `json:"id"`
	Version       int64  `json:"version"`
	EncryptedBlob string `json:"encrypted_blob"`
	IsDeleted     bool   `json:"is_deleted"`
	ModifiedAt    int64  `json:"modified_at"`
	OriginDevice  string `json:"origin_device"`
}

func toWire(r Record) wireRecord {
	return wireRecord{
		ID:            r.ID,
		Version:       r.Version,
		EncryptedBlob: base64.StdEncoding.EncodeToString(r.EncryptedBlob),
		IsDeleted:     r.IsDeleted,
		ModifiedAt:    r.ModifiedAt,
		OriginDevice:  r.OriginDevice,
	}
}

func fromWire(w wireRecord) (Record, error) {
	blob, err := base64.StdEncoding.DecodeString(w.EncryptedBlob)
	if err != nil {
		return Record{}, fmt.Errorf("decode encrypted_blob: %w", err)
	}

	return Record{
		ID:            w.ID,
		Version:       w.Version,
		EncryptedBlob: blob,
		IsDeleted:     w.IsDeleted,
		ModifiedAt:    w.ModifiedAt,
		OriginDevice:  w.OriginDevice,
	}, nil
}

func (t *HTTPTransport) do(ctx context.Context, method, path string, query url.Values, body, out any) error {
	u := t.baseURL + path
	if len(query) > 0 {
		u += "?" + query.Encode()
	}

	var reqBody io.Reader

	if body != nil {
		raw, err := json.Marshal(body)
		if err != nil {
			return err
		}

		reqBody = bytes.NewReader(raw)
	}

	req, err := http.NewRequestWithContext(ctx, method, u, reqBody)
	if err != nil {
		return err
	}

	req.Header.Set("Authorization", "Bearer "+t.token)

	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	resp, err := t.client.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	if resp.StatusCode >= 300 {
		raw, _ := io.ReadAll(io.LimitReader(resp.Body, 4096))
		return fmt.Errorf("sync server: %s: %s", resp.Status, raw)
	}

	if out == nil {
		return nil
	}

	return json.NewDecoder(resp.Body).Decode(out)
}

type pullResponse struct {
	CurrentVersion int64        `json:"current_version"`
	Items          []wireRecord `json:"items"`
	HasMore        bool         `json:"has_more"`
}

func (t *HTTPTransport) Pull(ctx context.Context, sinceVersion int64) (PullResult, error) {
	var resp pullResponse

	query := url.Values{"since": []string{fmt.Sprint(sinceVersion)}}
	if err := t.do(ctx, http.MethodGet, "/v1/items", query, nil, &resp); err != nil {
		return PullResult{}, err
	}

	items := make([]Record, 0, len(resp.Items))

	for _, w := range resp.Items {
		r, err := fromWire(w)
		if err != nil {
			return PullResult{}, err
		}

		items = append(items, r)
	}

	return PullResult{CurrentVersion: resp.CurrentVersion, Items: items, HasMore: resp.HasMore}, nil
}

type pushRequestWire struct {
	BaseVersion int64        `json:"base_version"`
	Items       []wireRecord `json:"items"`
}

type pushResponse struct {
	NewVersion   int64        `json:"new_version"`
	HadConflicts bool         `json:"had_conflicts"`
	Conflicts    []wireRecord `json:"conflicts"`
}

func (t *HTTPTransport) Push(ctx context.Context, req PushRequest) (PushResult, error) {
	wire := pushRequestWire{BaseVersion: req.BaseVersion}
	for _, r := range req.Items {
		wire.Items = append(wire.Items, toWire(r))
	}

	var resp pushResponse
	if err := t.do(ctx, http.MethodPost, "/v1/items", nil, wire, &resp); err != nil {
		return PushResult{}, err
	}

	conflicts := make([]Record, 0, len(resp.Conflicts))

	for _, w := range resp.Conflicts {
		r, err := fromWire(w)
		if err != nil {
			return PushResult{}, err
		}

		conflicts = append(conflicts, r)
	}

	return PushResult{NewVersion: resp.NewVersion, HadConflicts: resp.HadConflicts, Conflicts: conflicts}, nil
}

type commandWire struct {
	ID        string `json:"id"`
	Type      string `json:"type"`
	CreatedAt int64  `json:"created_at"`
}

func (t *HTTPTransport) GetCommands(ctx context.Context) ([]Command, error) {
	var resp []commandWire
	if err := t.do(ctx, http.MethodGet, "/v1/commands", nil, nil, &resp); err != nil {
		return nil, err
	}

	cmds := make([]Command, 0, len(resp))

	for _, w := range resp {
		cmds = append(cmds, Command{ID: w.ID, Type: CommandType(w.Type), CreatedAt: w.CreatedAt})
	}

	return cmds, nil
}

func (t *HTTPTransport) AcknowledgeCommand(ctx context.Context, id string, success bool) error {
	body := struct {
		Success bool `json:"success"`
	}{success}

	return t.do(ctx, http.MethodPost, "/v1/commands/"+url.PathEscape(id)+"/ack", nil, body, nil)
}

var _ Transport = (*HTTPTransport)(nil)
