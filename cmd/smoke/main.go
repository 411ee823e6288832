package main

import (
	"bytes"
	"encoding/base64"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"os"
	"time"

	_ "github.com/joho/godotenv/autoload"
	"github.com/jung-kurt/gofpdf"
)

const (
	defaultAPIBase = "http://localhost:8080"
)

var (
	apiBase    string
	token      string
	client     = &http.Client{Timeout: 30 * time.Second}
	reportName string
	reportDate string
	reportPDF  []byte
)

func main() {
	fmt.Println("=== Ops Dashboard Report Store Smoke Test ===")
	fmt.Println()

	// Load config from env
	apiBase = getEnv("API_BASE_URL", defaultAPIBase)
	token = getEnv("SMOKE_TOKEN", "")
	devAuth := getEnv("SMOKE_DEV_AUTH", "") != ""

	fmt.Printf("API Base: %s\n", apiBase)
	fmt.Printf("Token: %s\n", maskString(token))
	fmt.Println()

	// DD-MM-YY in the name, so the service has to infer the date
	now := time.Now()
	reportName = fmt.Sprintf("Smoke Report %s.pdf", now.Format("02-01-06"))
	reportDate = now.Format("2006-01-02")

	steps := []struct {
		name string
		fn   func() error
	}{
		{"Healthz", testHealthz},
	}
	if devAuth && token == "" {
		steps = append(steps, struct {
			name string
			fn   func() error
		}{"Dev Token", testDevToken})
	}
	steps = append(steps, []struct {
		name string
		fn   func() error
	}{
		{"Upload Report (PDF)", testUploadReport},
		{"List Reports", testListReports},
		{"Download Report", testDownloadReport},
		{"Download Missing Report", testDownloadMissing},
		{"Upload Malformed Payload", testUploadMalformed},
	}...)

	failed := false
	for i, step := range steps {
		fmt.Printf("[%d/%d] %s... ", i+1, len(steps), step.name)
		if err := step.fn(); err != nil {
			fmt.Printf("❌ FAILED\n")
			fmt.Printf("  Error: %v\n\n", err)
			failed = true
			break
		}
		fmt.Printf("✅ OK\n")
	}

	fmt.Println()
	if failed {
		fmt.Println("❌ SMOKE TEST FAILED")
		os.Exit(1)
	}
	fmt.Println("✅ ALL SMOKE TESTS PASSED")
}

func testHealthz() error {
	resp, err := client.Get(apiBase + "/healthz")
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("status=%d", resp.StatusCode)
	}

	var result map[string]string
	if err := json.NewDecoder(resp.Body).Decode(&result); err != nil {
		return fmt.Errorf("decode failed: %w", err)
	}
	if result["status"] != "ok" {
		return fmt.Errorf("unexpected status: %q", result["status"])
	}
	return nil
}

func testDevToken() error {
	req, err := http.NewRequest("POST", apiBase+"/api/auth/dev", nil)
	if err != nil {
		return err
	}

	resp, err := client.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		body, _ := io.ReadAll(io.LimitReader(resp.Body, 4096))
		return fmt.Errorf("status=%d body=%s", resp.StatusCode, string(body))
	}

	var result struct {
		AccessToken string `json:"access_token"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&result); err != nil {
		return fmt.Errorf("decode failed: %w", err)
	}
	if result.AccessToken == "" {
		return fmt.Errorf("empty access_token")
	}
	token = result.AccessToken
	return nil
}

func testUploadReport() error {
	pdf, err := buildSmokePDF()
	if err != nil {
		return fmt.Errorf("build pdf: %w", err)
	}
	reportPDF = pdf

	payload := map[string]string{
		"fileName": reportName,
		"pdfData":  "data:application/pdf;base64," + base64.StdEncoding.EncodeToString(pdf),
	}
	body, err := json.Marshal(payload)
	if err != nil {
		return err
	}

	resp, err := postJSON("/api/reports", body)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		body, _ := io.ReadAll(io.LimitReader(resp.Body, 4096))
		return fmt.Errorf("status=%d body=%s", resp.StatusCode, string(body))
	}

	var result struct {
		Success  bool   `json:"success"`
		FilePath string `json:"filePath"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&result); err != nil {
		return fmt.Errorf("decode failed: %w", err)
	}
	if !result.Success || result.FilePath == "" {
		return fmt.Errorf("unexpected response: success=%t filePath=%q", result.Success, result.FilePath)
	}
	return nil
}

func testListReports() error {
	req, err := http.NewRequest("GET", apiBase+"/api/reports", nil)
	if err != nil {
		return err
	}
	addAuth(req)

	resp, err := client.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		body, _ := io.ReadAll(io.LimitReader(resp.Body, 4096))
		return fmt.Errorf("status=%d body=%s", resp.StatusCode, string(body))
	}

	var result []struct {
		ID        string `json:"id"`
		Date      string `json:"date"`
		SizeBytes int64  `json:"sizeBytes"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&result); err != nil {
		return fmt.Errorf("decode failed: %w", err)
	}

	for _, r := range result {
		if r.ID != reportName {
			continue
		}
		if r.Date != reportDate {
			return fmt.Errorf("report date=%q, want %q", r.Date, reportDate)
		}
		if r.SizeBytes != int64(len(reportPDF)) {
			return fmt.Errorf("report size=%d, want %d", r.SizeBytes, len(reportPDF))
		}
		return nil
	}
	return fmt.Errorf("uploaded report %q not listed (%d reports)", reportName, len(result))
}

func testDownloadReport() error {
	req, err := http.NewRequest("GET", apiBase+"/api/reports/"+url.PathEscape(reportName), nil)
	if err != nil {
		return err
	}
	addAuth(req)

	resp, err := client.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		body, _ := io.ReadAll(io.LimitReader(resp.Body, 4096))
		return fmt.Errorf("status=%d body=%s", resp.StatusCode, string(body))
	}
	if ct := resp.Header.Get("Content-Type"); ct != "application/pdf" {
		return fmt.Errorf("content-type=%q", ct)
	}

	data, err := io.ReadAll(resp.Body)
	if err != nil {
		return fmt.Errorf("failed to read body: %w", err)
	}
	if !bytes.Equal(data, reportPDF) {
		return fmt.Errorf("downloaded %d bytes, differs from uploaded %d bytes", len(data), len(reportPDF))
	}
	return nil
}

func testDownloadMissing() error {
	name := fmt.Sprintf("ghost-%d.pdf", time.Now().UnixNano())
	req, err := http.NewRequest("GET", apiBase+"/api/reports/"+url.PathEscape(name), nil)
	if err != nil {
		return err
	}
	addAuth(req)

	resp, err := client.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	return expectError(resp, http.StatusNotFound, "not_found")
}

func testUploadMalformed() error {
	body, err := json.Marshal(map[string]string{
		"fileName": "smoke-malformed.pdf",
		"pdfData":  "no-comma-here",
	})
	if err != nil {
		return err
	}

	resp, err := postJSON("/api/reports", body)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	return expectError(resp, http.StatusBadRequest, "decode_failure")
}

// Helper functions

func buildSmokePDF() ([]byte, error) {
	pdf := gofpdf.New("P", "mm", "A4", "")
	pdf.AddPage()
	pdf.SetFont("Helvetica", "B", 16)
	pdf.Cell(40, 10, "Ops Dashboard smoke report")
	pdf.Ln(12)
	pdf.SetFont("Helvetica", "", 11)
	pdf.Cell(40, 10, "Generated "+time.Now().UTC().Format(time.RFC3339))

	var buf bytes.Buffer
	if err := pdf.Output(&buf); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

func postJSON(path string, body []byte) (*http.Response, error) {
	req, err := http.NewRequest("POST", apiBase+path, bytes.NewReader(body))
	if err != nil {
		return nil, err
	}
	req.Header.Set("Content-Type", "application/json")
	addAuth(req)
	return client.Do(req)
}

func expectError(resp *http.Response, status int, code string) error {
	if resp.StatusCode != status {
		body, _ := io.ReadAll(io.LimitReader(resp.Body, 4096))
		return fmt.Errorf("status=%d body=%s, want %d", resp.StatusCode, string(body), status)
	}
	var result struct {
		Error string `json:"error"`
		Code  string `json:"code"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&result); err != nil {
		return fmt.Errorf("decode failed: %w", err)
	}
	if result.Code != code {
		return fmt.Errorf("code=%q, want %q", result.Code, code)
	}
	return nil
}

func addAuth(req *http.Request) {
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
}

func getEnv(key, defaultVal string) string {
	if val := os.Getenv(key); val != "" {
		return val
	}
	return defaultVal
}

func maskString(s string) string {
	if s == "" {
		return "(not set)"
	}
	if len(s) <= 8 {
		return "***"
	}
	return s[:4] + "..." + s[len(s)-4:]
}
