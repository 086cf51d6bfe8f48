package httpx

import (
	"encoding/json"
	"fmt"
	"io"
	"net/http"
)

// DoRawJSONResponse sends the request and returns the response body as raw
// JSON. Non-2xx responses are returned as a *StatusError.
func DoRawJSONResponse(client Client, request *http.Request) (json.RawMessage, error) {
	resp, err := client.Do(request)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	if err := StatusErr(resp); err != nil {
		return nil, err
	}

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("failed to read response body: %w", err)
	}
	if !json.Valid(body) {
		return nil, fmt.Errorf("response body from %s %s is not valid JSON", request.Method, request.URL)
	}
	return json.RawMessage(body), nil
}

// DoUnmarshalJSONResponse sends the request and decodes the response body into
// response.
func DoUnmarshalJSONResponse(client Client, request *http.Request, response any) error {
	body, err := DoRawJSONResponse(client, request)
	if err != nil {
		return err
	}
	if err := json.Unmarshal(body, response); err != nil {
		return fmt.Errorf("failed to decode response body from %s %s: %w", request.Method, request.URL, err)
	}
	return nil
}

// DoDiscardResponse sends the request and drains the response, only reporting
// transport and status errors.
func DoDiscardResponse(client Client, request *http.Request) error {
	resp, err := client.Do(request)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	if err := StatusErr(resp); err != nil {
		return err
	}
	_, err = io.Copy(io.Discard, resp.Body)
	return err
}
