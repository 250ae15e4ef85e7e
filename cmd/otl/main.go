package main

import (
	"encoding/json"
	"flag"
	"fmt"
	"io"
	"net/http"
	"os"
	"strings"
	"time"
)

func main() {
	baseURL := flag.String("server", envOr("OTL_SERVER_URL", "http://127.0.0.1:8080"), "URL du serveur (ex: http://127.0.0.1:8080)")
	timeout := flag.Duration("timeout", 10*time.Second, "Timeout HTTP")
	flag.Parse()

	args := flag.Args()
	if len(args) == 0 {
		fmt.Fprintln(os.Stderr, "Usage: otl [health|version|sync|status|tier <S|A|B|C>|scores]")
		os.Exit(2)
	}

	client := &http.Client{Timeout: *timeout}

	switch args[0] {
	case "health":
		get(client, *baseURL+"/api/v1/health")
	case "version":
		get(client, *baseURL+"/api/v1/version")
	case "sync":
		post(client, *baseURL+"/api/v1/sync")
	case "status":
		get(client, *baseURL+"/api/v1/sync/status")
	case "scores":
		get(client, *baseURL+"/api/v1/scores")
	case "tier":
		if len(args) < 2 {
			fmt.Fprintln(os.Stderr, "Usage: otl tier <S|A|B|C>")
			os.Exit(2)
		}
		get(client, *baseURL+"/api/v1/tiers/"+strings.ToUpper(args[1]))
	default:
		fmt.Fprintln(os.Stderr, "Commande inconnue:", args[0])
		os.Exit(2)
	}
}

func get(client *http.Client, url string) {
	resp, err := client.Get(url)
	if err != nil {
		fmt.Fprintln(os.Stderr, "Erreur:", err)
		os.Exit(1)
	}
	printBody(resp)
}

func post(client *http.Client, url string) {
	resp, err := client.Post(url, "application/json", nil)
	if err != nil {
		fmt.Fprintln(os.Stderr, "Erreur:", err)
		os.Exit(1)
	}
	printBody(resp)
}

func printBody(resp *http.Response) {
	defer resp.Body.Close()

	b, _ := io.ReadAll(resp.Body)
	var pretty any
	if err := json.Unmarshal(b, &pretty); err == nil {
		enc := json.NewEncoder(os.Stdout)
		enc.SetIndent("", "  ")
		_ = enc.Encode(pretty)
	} else {
		_, _ = os.Stdout.Write(b)
	}
	if resp.StatusCode >= 400 {
		os.Exit(1)
	}
}

func envOr(key, def string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return def
}
