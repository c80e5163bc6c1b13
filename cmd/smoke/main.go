package main

import (
	"bytes"
	"context"
	"encoding/json"
	"flag"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"
	"os"
	"path/filepath"
	"time"

	"multimodal-assistant-be/internal/constant"
	"multimodal-assistant-be/pkg/events"
	pktNats "multimodal-assistant-be/pkg/nats"

	"github.com/fatih/color"
)

const sessionHeader = "X-Session-Token"

type client struct {
	baseURL string
	token   string
	http    *http.Client
}

// Pretty print JSON helper
func prettyPrint(body []byte) {
	var v interface{}
	if err := json.Unmarshal(body, &v); err != nil {
		fmt.Println(string(body))
		return
	}
	b, _ := json.MarshalIndent(v, "", "  ")
	fmt.Println(string(b))
}

func (c *client) do(req *http.Request) (*http.Response, []byte, error) {
	if c.token != "" {
		req.Header.Set(sessionHeader, c.token)
	}
	resp, err := c.http.Do(req)
	if err != nil {
		return nil, nil, err
	}
	defer resp.Body.Close()

	// keep the session the server handed out
	if t := resp.Header.Get(sessionHeader); t != "" {
		c.token = t
	}
	body, err := io.ReadAll(resp.Body)
	return resp, body, err
}

func (c *client) sendJSON(method, path string, payload interface{}) (*http.Response, []byte, error) {
	var bodyReader io.Reader
	if payload != nil {
		b, _ := json.Marshal(payload)
		bodyReader = bytes.NewReader(b)
	}
	req, err := http.NewRequest(method, c.baseURL+path, bodyReader)
	if err != nil {
		return nil, nil, err
	}
	req.Header.Set("Content-Type", "application/json")
	return c.do(req)
}

func (c *client) upload(filePath, mode, question string) (*http.Response, []byte, error) {
	f, err := os.Open(filePath)
	if err != nil {
		return nil, nil, err
	}
	defer f.Close()

	var buf bytes.Buffer
	w := multipart.NewWriter(&buf)
	part, err := w.CreateFormFile("file", filepath.Base(filePath))
	if err != nil {
		return nil, nil, err
	}
	if _, err := io.Copy(part, f); err != nil {
		return nil, nil, err
	}
	_ = w.WriteField("mode", mode)
	if question != "" {
		_ = w.WriteField("question", question)
	}
	if err := w.Close(); err != nil {
		return nil, nil, err
	}

	req, err := http.NewRequest(http.MethodPost, c.baseURL+"/assistant/v1/upload", &buf)
	if err != nil {
		return nil, nil, err
	}
	req.Header.Set("Content-Type", w.FormDataContentType())
	return c.do(req)
}

func step(title string, resp *http.Response, body []byte, err error) {
	color.Yellow("\n%s", title)
	if err != nil {
		color.Red("Failed: %v", err)
		os.Exit(1)
	}
	if resp.StatusCode >= 400 {
		color.Red("Status: %s", resp.Status)
	} else {
		color.Green("Status: %s", resp.Status)
	}
	prettyPrint(body)
}

func main() {
	baseURL := flag.String("url", "http://localhost:3000/api", "API base URL")
	file := flag.String("file", "", "file to upload")
	mode := flag.String("mode", "auto_detect", "processing mode")
	question := flag.String("question", "", "question asked about an uploaded PDF")
	apiKey := flag.String("key", os.Getenv("GOOGLE_API_KEY"), "API key stored in the session")
	natsURL := flag.String("nats", os.Getenv("NATS_URL"), "watch this NATS server for the dispatch event")
	flag.Parse()

	if *file == "" {
		color.Red("usage: smoke -file <path> [-mode transcription] [-question ...]")
		os.Exit(2)
	}

	c := &client{baseURL: *baseURL, http: &http.Client{}}
	color.Cyan("Starting assistant smoke test against %s\n", *baseURL)

	dispatched := make(chan events.Event, 1)
	if *natsURL != "" {
		sub, err := pktNats.NewSubscriber(*natsURL)
		if err != nil {
			color.Red("NATS unavailable: %v", err)
		} else {
			defer sub.Close()
			err = sub.Subscribe(context.Background(), constant.EventUploadDispatch, func(_ context.Context, evt events.Event) error {
				select {
				case dispatched <- evt:
				default:
				}
				return nil
			})
			if err != nil {
				color.Red("NATS subscribe failed: %v", err)
			}
		}
	}

	resp, body, err := c.sendJSON(http.MethodGet, "/assistant/v1/modes", nil)
	step("1. Processing modes", resp, body, err)

	resp, body, err = c.sendJSON(http.MethodGet, "/session/v1", nil)
	step("2. Start session", resp, body, err)

	if *apiKey != "" {
		resp, body, err = c.sendJSON(http.MethodPut, "/session/v1/credential", map[string]string{"credential": *apiKey})
		step("3. Store API key", resp, body, err)
	}

	resp, body, err = c.upload(*file, *mode, *question)
	step("4. Upload "+filepath.Base(*file), resp, body, err)

	resp, body, err = c.sendJSON(http.MethodGet, "/session/v1/dispatches", nil)
	step("5. Dispatch history", resp, body, err)

	if *natsURL != "" {
		color.Yellow("\n6. Waiting for dispatch event on NATS")
		select {
		case evt := <-dispatched:
			color.Green("Received %s at %s", evt.EventType(), evt.Timestamp().Format(time.RFC3339))
			b, _ := json.Marshal(evt.Payload())
			prettyPrint(b)
		case <-time.After(10 * time.Second):
			color.Red("No event received within 10s")
		}
	}

	color.Cyan("\nDone.")
}
