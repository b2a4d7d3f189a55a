package main

import (
	"bytes"
	"encoding/json"
	"flag"
	"fmt"
	"io"
	"net/http"
	"os"
	"time"

	"github.com/fatih/color"
)

var baseURL = "http://localhost:3000/api"

type envelope struct {
	Success bool            `json:"success"`
	Code    int             `json:"code"`
	Message string          `json:"message"`
	Data    json.RawMessage `json:"data"`
}

type notice struct {
	Kind    string `json:"kind"`
	Code    string `json:"code"`
	Message string `json:"message"`
}

type session struct {
	ID         string  `json:"id"`
	Screen     string  `json:"screen"`
	Notice     *notice `json:"notice"`
	InviteCode string  `json:"invite_code"`
	Results    *struct {
		RGI        float64 `json:"rgi"`
		Mutual     bool    `json:"mutual"`
		Categories []struct {
			Label string  `json:"label"`
			Score float64 `json:"score"`
		} `json:"categories"`
	} `json:"results"`
	Insights []struct {
		Label      string `json:"label"`
		Type       string `json:"type"`
		Suggestion string `json:"suggestion"`
	} `json:"insights"`
}

type startResponse struct {
	Token   string  `json:"token"`
	Session session `json:"session"`
}

type questionBank struct {
	Calibration []struct {
		Key string `json:"key"`
	} `json:"calibration"`
	Assessment []struct {
		Key string `json:"key"`
	} `json:"assessment"`
}

var (
	step = color.New(color.FgCyan, color.Bold)
	ok   = color.New(color.FgGreen)
	warn = color.New(color.FgYellow)
	fail = color.New(color.FgRed, color.Bold)
)

func sendRequest(method, url, token string, body interface{}) (*envelope, error) {
	var bodyReader io.Reader
	if body != nil {
		jsonBody, _ := json.Marshal(body)
		bodyReader = bytes.NewBuffer(jsonBody)
	}

	req, err := http.NewRequest(method, baseURL+url, bodyReader)
	if err != nil {
		return nil, err
	}
	req.Header.Set("Content-Type", "application/json")
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}

	client := &http.Client{Timeout: 10 * time.Second}
	resp, err := client.Do(req)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	raw, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, err
	}
	var env envelope
	if err := json.Unmarshal(raw, &env); err != nil {
		return nil, fmt.Errorf("status %d: %s", resp.StatusCode, string(raw))
	}
	if !env.Success {
		return &env, fmt.Errorf("status %d: %s", env.Code, env.Message)
	}
	return &env, nil
}

func must(err error, what string) {
	if err != nil {
		fail.Printf("✗ %s: %v\n", what, err)
		os.Exit(1)
	}
}

func act(token string, action map[string]interface{}) session {
	env, err := sendRequest("POST", "/session/v1/actions", token, action)
	must(err, fmt.Sprintf("action %v", action["type"]))
	var s session
	must(json.Unmarshal(env.Data, &s), "decode session")
	if s.Notice != nil {
		if s.Notice.Kind == "error" {
			warn.Printf("  ! [%s] %s\n", s.Notice.Code, s.Notice.Message)
		} else {
			ok.Printf("  ✓ [%s] %s\n", s.Notice.Code, s.Notice.Message)
		}
	}
	fmt.Printf("  screen: %s\n", s.Screen)
	return s
}

func navigate(token, to string) session {
	return act(token, map[string]interface{}{"type": "navigate", "to": to})
}

func start() startResponse {
	env, err := sendRequest("POST", "/session/v1", "", nil)
	must(err, "start session")
	var out startResponse
	must(json.Unmarshal(env.Data, &out), "decode start")
	return out
}

func ratings(keys []string, value int) map[string]int {
	out := make(map[string]int, len(keys))
	for _, k := range keys {
		out[k] = value
	}
	return out
}

func main() {
	flag.StringVar(&baseURL, "url", baseURL, "API base URL")
	mutual := flag.Bool("mutual", true, "blend mutual reflection into the scores")
	flag.Parse()

	color.New(color.FgMagenta, color.Bold).Println("=== RelateScore Wizard Simulation ===")

	step.Println("\n[1] Loading question bank")
	env, err := sendRequest("GET", "/questions/v1", "", nil)
	must(err, "questions")
	var bank questionBank
	must(json.Unmarshal(env.Data, &bank), "decode questions")
	var calibration, assessment []string
	for _, q := range bank.Calibration {
		calibration = append(calibration, q.Key)
	}
	for _, q := range bank.Assessment {
		assessment = append(assessment, q.Key)
	}
	ok.Printf("  ✓ %d calibration and %d assessment questions\n", len(calibration), len(assessment))

	step.Println("\n[2] Issuer creates a profile and an invite")
	issuer := start()
	navigate(issuer.Token, "create_profile")
	navigate(issuer.Token, "home")
	act(issuer.Token, map[string]interface{}{"type": "set_consent", "value": true})
	navigate(issuer.Token, "home")
	s := navigate(issuer.Token, "create_invite")
	if s.InviteCode == "" {
		fail.Println("✗ no invite code issued")
		os.Exit(1)
	}
	ok.Printf("  ✓ invite code %s\n", s.InviteCode)

	step.Println("\n[3] Partner redeems the code")
	partner := start()
	navigate(partner.Token, "partner_entry")
	act(partner.Token, map[string]interface{}{"type": "submit_partner_code", "code": " " + s.InviteCode + " "})
	navigate(partner.Token, "reflection_start")
	navigate(partner.Token, "likert")

	step.Println("\n[4] Calibration and assessment")
	navigate(partner.Token, "preview")
	act(partner.Token, map[string]interface{}{"type": "set_ratings", "ratings": ratings(calibration, 4)})
	navigate(partner.Token, "preview")
	act(partner.Token, map[string]interface{}{"type": "set_mutual", "value": *mutual})
	navigate(partner.Token, "assessment")
	act(partner.Token, map[string]interface{}{"type": "set_ratings", "ratings": ratings(assessment, 5)})

	step.Println("\n[5] Submitting")
	for attempt := 1; attempt <= 5; attempt++ {
		s = act(partner.Token, map[string]interface{}{"type": "submit_assessment"})
		if s.Results != nil {
			break
		}
		warn.Printf("  attempt %d held back, retrying\n", attempt)
	}
	if s.Results == nil {
		fail.Println("✗ every submission was held back")
		os.Exit(1)
	}

	step.Println("\n[6] Dashboard")
	color.New(color.FgWhite, color.Bold).Printf("  RGI %.1f (mutual=%v)\n", s.Results.RGI, s.Results.Mutual)
	for _, c := range s.Results.Categories {
		fmt.Printf("    %-28s %5.1f\n", c.Label, c.Score)
	}
	for _, in := range s.Insights {
		fmt.Printf("    [%s] %s: %s\n", in.Type, in.Label, in.Suggestion)
	}

	act(partner.Token, map[string]interface{}{"type": "save_reflection", "text": "We listen better than we thought."})

	step.Println("\n[7] Reset keeps the issuer's code")
	act(issuer.Token, map[string]interface{}{"type": "reset", "keep_invite": true})

	ok.Println("\n✓ Simulation finished")
}
