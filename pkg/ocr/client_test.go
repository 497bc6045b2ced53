package ocr

import (
	"context"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"
)

func ocrServer(t *testing.T, failures int, parsedText string) (*httptest.Server, *int) {
	t.Helper()
	attempts := new(int)
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		*attempts++
		if *attempts <= failures {
			w.WriteHeader(http.StatusInternalServerError)
			return
		}
		w.Header().Set("Content-Type", "application/json")
		fmt.Fprintf(w, `{"IsErroredOnProcessing":false,"ParsedResults":[{"ParsedText":%q}]}`, parsedText)
	}))
	t.Cleanup(server.Close)
	return server, attempts
}

func TestExtractTextFirstAttempt(t *testing.T) {
	server, attempts := ocrServer(t, 0, "  Цех 3 Корпус \n")

	client := NewClient(server.URL, "key")
	text, err := client.ExtractTextFromURL(context.Background(), "https://files.test/doc.jpg")
	if err != nil {
		t.Fatalf("ExtractTextFromURL() error: %v", err)
	}
	if text != "Цех 3 Корпус" {
		t.Errorf("text = %q, want trimmed parse result", text)
	}
	if *attempts != 1 {
		t.Errorf("attempts = %d, want 1", *attempts)
	}
}

func TestExtractTextRecoversAfterFailure(t *testing.T) {
	server, attempts := ocrServer(t, 1, "recovered")

	client := NewClient(server.URL, "key")
	text, err := client.ExtractTextFromURL(context.Background(), "https://files.test/doc.jpg")
	if err != nil {
		t.Fatalf("ExtractTextFromURL() error: %v", err)
	}
	if text != "recovered" {
		t.Errorf("text = %q", text)
	}
	if *attempts != 2 {
		t.Errorf("attempts = %d, want 2", *attempts)
	}
}

func TestExtractTextExhaustsAttempts(t *testing.T) {
	server, attempts := ocrServer(t, 100, "")

	client := NewClient(server.URL, "key")
	_, err := client.ExtractTextFromURL(context.Background(), "https://files.test/doc.jpg")
	if err == nil {
		t.Fatal("ExtractTextFromURL() expected error after exhaustion")
	}
	if *attempts != maxAttempts {
		t.Errorf("attempts = %d, want %d", *attempts, maxAttempts)
	}
}

func TestExtractTextRetriesProcessingError(t *testing.T) {
	attempts := 0
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		attempts++
		w.Header().Set("Content-Type", "application/json")
		if attempts == 1 {
			fmt.Fprint(w, `{"IsErroredOnProcessing":true,"ParsedResults":[],"ErrorMessage":["Timed out waiting for results"]}`)
			return
		}
		fmt.Fprint(w, `{"IsErroredOnProcessing":false,"ParsedResults":[{"ParsedText":"ok"}]}`)
	}))
	t.Cleanup(server.Close)

	client := NewClient(server.URL, "key")
	text, err := client.ExtractTextFromURL(context.Background(), "https://files.test/doc.jpg")
	if err != nil {
		t.Fatalf("ExtractTextFromURL() error: %v", err)
	}
	if text != "ok" {
		t.Errorf("text = %q", text)
	}
	if attempts != 2 {
		t.Errorf("attempts = %d, want 2", attempts)
	}
}
