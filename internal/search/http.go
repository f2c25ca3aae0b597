package search

import (
	"fmt"
	"io"
	"net/http"
)

// StatusError переводит HTTP-статус провайдера в ошибку пакета
func StatusError(statusCode int) error {
	switch statusCode {
	case http.StatusUnauthorized, http.StatusForbidden:
		return ErrUnauthorized
	case http.StatusTooManyRequests:
		return ErrRateLimit
	case http.StatusBadRequest:
		return ErrInvalidRequest
	default:
		return fmt.Errorf("%w: status %d", ErrSearchFailed, statusCode)
	}
}

// Do выполняет запрос и читает тело целиком
func Do(client *http.Client, req *http.Request) ([]byte, int, error) {
	resp, err := client.Do(req)
	if err != nil {
		return nil, 0, fmt.Errorf("%w: %w", ErrSearchFailed, err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, resp.StatusCode, fmt.Errorf("read response: %w", err)
	}
	return body, resp.StatusCode, nil
}
