package canvas

import (
	"bytes"
	"context"
	"encoding/csv"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"mime/multipart"
	"net/http"
	"net/url"
	"time"

	"github.com/ets-berkeley-edu/ripley/internal/types"
)

// ErrNotFound marks a 404 from Canvas.
var ErrNotFound = errors.New("canvas: not found")

// Report generation and import processing each get up to an hour.
const (
	statusCheckInterval        = 20 * time.Second
	maxReportRetrievalAttempts = 180
	maxSISImportAttempts       = 180
)

// GetCSVReport requests an account provisioning report of the given type,
// polls until Canvas finishes generating it, and returns the parsed rows. An
// empty termID requests an account-wide report.
func (c *Client) GetCSVReport(ctx context.Context, reportType, termID string) ([]map[string]string, error) {
	form := url.Values{reportType: {"1"}}
	if termID != "" {
		form.Set("enrollment_term", "sis_term_id:"+termID)
	}
	var report types.CanvasReport
	path := fmt.Sprintf("/api/v1/accounts/%s/reports/provisioning_csv", c.accountID)
	if _, err := c.request(ctx, http.MethodPost, path+"?"+encodeReportParams(form), nil, &report); err != nil {
		return nil, fmt.Errorf("failed to request CSV %s report: %w", reportType, err)
	}
	slog.Info("Requested CSV report", "reportType", reportType, "reportId", report.ID)

	for attempts := 0; attempts < maxReportRetrievalAttempts; attempts++ {
		statusPath := fmt.Sprintf("%s/%d", path, report.ID)
		if err := c.get(ctx, statusPath, &report); err != nil {
			return nil, err
		}
		switch report.Status {
		case "complete":
			if report.Attachment == nil {
				return nil, fmt.Errorf("CSV %s report %d completed without an attachment", reportType, report.ID)
			}
			return c.downloadCSV(ctx, report.Attachment.URL)
		case "error":
			return nil, fmt.Errorf("failed to generate CSV %s report %d", reportType, report.ID)
		}
		select {
		case <-ctx.Done():
			return nil, ctx.Err()
		case <-time.After(statusCheckInterval):
		}
	}
	return nil, fmt.Errorf("failed to retrieve CSV %s report after %d attempts", reportType, maxReportRetrievalAttempts)
}

func (c *Client) downloadCSV(ctx context.Context, fileURL string) ([]map[string]string, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, fileURL, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to build report download request: %w", err)
	}
	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("report download failed: %w", err)
	}
	defer resp.Body.Close()
	if resp.StatusCode >= 400 {
		return nil, fmt.Errorf("report download returned %d", resp.StatusCode)
	}

	reader := csv.NewReader(resp.Body)
	header, err := reader.Read()
	if err != nil {
		return nil, fmt.Errorf("failed to read report header: %w", err)
	}
	var rows []map[string]string
	for {
		record, err := reader.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("failed to read report row: %w", err)
		}
		row := make(map[string]string, len(header))
		for i, column := range header {
			if i < len(record) {
				row[column] = record[i]
			}
		}
		rows = append(rows, row)
	}
	return rows, nil
}

// PostSISImport uploads a CSV attachment as an SIS import and polls until
// Canvas finishes processing it.
func (c *Client) PostSISImport(ctx context.Context, filename string, csvData []byte) (*types.SISImport, error) {
	var body bytes.Buffer
	writer := multipart.NewWriter(&body)
	part, err := writer.CreateFormFile("attachment", filename)
	if err != nil {
		return nil, fmt.Errorf("failed to build SIS import payload: %w", err)
	}
	if _, err := part.Write(csvData); err != nil {
		return nil, fmt.Errorf("failed to build SIS import payload: %w", err)
	}
	if err := writer.Close(); err != nil {
		return nil, fmt.Errorf("failed to build SIS import payload: %w", err)
	}

	path := fmt.Sprintf("/api/v1/accounts/%s/sis_imports?import_type=instructure_csv&extension=csv", c.accountID)
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+path, &body)
	if err != nil {
		return nil, fmt.Errorf("failed to build SIS import request: %w", err)
	}
	req.Header.Set("Authorization", "Bearer "+c.accessToken)
	req.Header.Set("Content-Type", writer.FormDataContentType())

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("SIS import request failed: %w", err)
	}
	defer resp.Body.Close()
	if resp.StatusCode >= 400 {
		return nil, fmt.Errorf("SIS import returned %d", resp.StatusCode)
	}
	var sisImport types.SISImport
	if err := decodeBody(resp.Body, &sisImport); err != nil {
		return nil, err
	}

	for attempts := 0; attempts < maxSISImportAttempts; attempts++ {
		current, err := c.GetSISImport(ctx, sisImport.ID)
		if err != nil {
			return nil, err
		}
		switch current.WorkflowState {
		case "initializing", "created", "importing":
			// still running
		case "imported":
			slog.Info("SIS import succeeded", "attachment", filename, "importId", current.ID)
			return current, nil
		case "imported_with_messages":
			slog.Info("SIS import partially succeeded", "attachment", filename, "importId", current.ID)
			return current, nil
		default:
			return nil, fmt.Errorf("SIS import %d failed or incompletely processed (state %q)", current.ID, current.WorkflowState)
		}
		select {
		case <-ctx.Done():
			return nil, ctx.Err()
		case <-time.After(statusCheckInterval):
		}
	}
	return nil, fmt.Errorf("SIS import %d did not finish after %d attempts", sisImport.ID, maxSISImportAttempts)
}

// GetSISImport fetches the state of a previously submitted SIS import.
func (c *Client) GetSISImport(ctx context.Context, importID int) (*types.SISImport, error) {
	var sisImport types.SISImport
	path := fmt.Sprintf("/api/v1/accounts/%s/sis_imports/%d", c.accountID, importID)
	if err := c.get(ctx, path, &sisImport); err != nil {
		return nil, err
	}
	return &sisImport, nil
}

func encodeReportParams(form url.Values) string {
	params := url.Values{}
	for key, values := range form {
		params.Set("parameters["+key+"]", values[0])
	}
	return params.Encode()
}

func decodeBody(body io.Reader, out any) error {
	if err := json.NewDecoder(body).Decode(out); err != nil {
		return fmt.Errorf("failed to decode Canvas response: %w", err)
	}
	return nil
}
