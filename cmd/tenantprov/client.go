package main

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
)

type client struct {
	BaseURL   string
	Token     string
	OutFormat string // "json" | "text"
	HTTP      *http.Client
	Out       io.Writer
}

func (c *client) do(ctx context.Context, method, path string, body []byte) (int, []byte, error) {
	url := strings.TrimRight(c.BaseURL, "/") + path
	req, err := http.NewRequestWithContext(ctx, method, url, bytes.NewReader(body))
	if err != nil {
		return 0, nil, err
	}
	if c.Token != "" {
		req.Header.Set("Authorization", "Bearer "+c.Token)
	}
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	resp, err := c.HTTP.Do(req)
	if err != nil {
		return 0, nil, err
	}
	defer resp.Body.Close()
	b, err := io.ReadAll(io.LimitReader(resp.Body, 1<<20))
	return resp.StatusCode, b, err
}

type provisionResult struct {
	Success bool `json:"success"`
	User    struct {
		ID    string `json:"id"`
		Email string `json:"email"`
	} `json:"user"`
	TenantID string `json:"tenant_id"`
	Role     string `json:"role"`

	Error string `json:"error"`
	Code  string `json:"code"`
	Step  string `json:"step"`
}

// provision llama a POST /v2/admin/provision y retorna error si la
// respuesta no es 2xx.
func (c *client) provision(ctx context.Context, email, password, name, tenantID string) error {
	body, _ := json.Marshal(map[string]string{
		"email":    email,
		"password": password,
		"name":     name,
		"tenantId": tenantID,
	})
	status, raw, err := c.do(ctx, http.MethodPost, "/v2/admin/provision", body)
	if err != nil {
		return err
	}

	var res provisionResult
	_ = json.Unmarshal(raw, &res)

	if c.OutFormat == "json" {
		c.print(raw)
	} else if status/100 == 2 {
		fmt.Fprintf(c.Out, "provisioned user=%s email=%s tenant=%s role=%s\n", res.User.ID, res.User.Email, res.TenantID, res.Role)
	}

	if status/100 != 2 {
		if res.Code != "" {
			return fmt.Errorf("provision failed: status=%d code=%s step=%s: %s", status, res.Code, res.Step, res.Error)
		}
		return fmt.Errorf("provision failed: status=%d body=%s", status, string(raw))
	}
	return nil
}

func (c *client) print(body []byte) {
	var v any
	if json.Unmarshal(body, &v) == nil {
		p, _ := json.MarshalIndent(v, "", "  ")
		fmt.Fprintln(c.Out, string(p))
		return
	}
	fmt.Fprintln(c.Out, string(body))
}
