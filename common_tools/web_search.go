package common_tools

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"os"
	"strings"
)

const tavilyEndpoint = "https://api.tavily.com/search"

// Web_Search is a tool to search the web using the Tavily Search API
func Web_Search(query string) (string, error) {
	apiKey := os.Getenv("TAVILY_API_KEY")
	if apiKey == "" {
		return "", fmt.Errorf("TAVILY_API_KEY environment variable not set")
	}

	payload, err := json.Marshal(map[string]interface{}{
		"query":          query,
		"max_results":    5,
		"include_answer": true,
	})
	if err != nil {
		return "", fmt.Errorf("error encoding request: %w", err)
	}

	req, err := http.NewRequest("POST", tavilyEndpoint, bytes.NewReader(payload))
	if err != nil {
		return "", fmt.Errorf("error creating request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Authorization", "Bearer "+apiKey)

	client := &http.Client{}
	resp, err := client.Do(req)
	if err != nil {
		return "", fmt.Errorf("error sending request to Tavily API: %w", err)
	}
	defer resp.Body.Close()

	responseBody, err := io.ReadAll(resp.Body)
	if err != nil {
		return "", fmt.Errorf("error reading response body: %w", err)
	}

	if resp.StatusCode != http.StatusOK {
		return "", fmt.Errorf("Tavily API request failed with status %d: %s", resp.StatusCode, string(responseBody))
	}

	var result SearchResponse
	if err := json.Unmarshal(responseBody, &result); err != nil {
		return "", fmt.Errorf("error unmarshalling Tavily API response: %w", err)
	}

	return FormatSearchResults(result), nil
}

// FormatSearchResults converts a search response into a readable text block
// the model can fold into its next completion.
func FormatSearchResults(searchResult SearchResponse) string {
	var builder strings.Builder

	builder.WriteString(fmt.Sprintf("Search Query: %s\n\n", searchResult.Query))

	if searchResult.Answer != "" {
		builder.WriteString(fmt.Sprintf("Summary Answer: %s\n\n", searchResult.Answer))
	}

	builder.WriteString("Web Search Results:\n\n")
	if len(searchResult.Results) == 0 {
		builder.WriteString("  No web results found.\n")
		return builder.String()
	}

	for i, result := range searchResult.Results {
		builder.WriteString(fmt.Sprintf("%d. Title: %s\n", i+1, result.Title))
		builder.WriteString(fmt.Sprintf("   URL: %s\n", result.URL))
		builder.WriteString(fmt.Sprintf("   Content: %s\n", result.Content))

		// Extract source from URL
		parsedURL, err := url.Parse(result.URL)
		source := "Unknown"
		if err == nil {
			source = strings.TrimPrefix(parsedURL.Hostname(), "www.")
		}
		builder.WriteString(fmt.Sprintf("   Source: %s\n", source))
		if result.PublishedDate != "" {
			builder.WriteString(fmt.Sprintf("   Published: %s\n", result.PublishedDate))
		}
		builder.WriteString("\n")
	}

	return builder.String()
}
