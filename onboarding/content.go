package onboarding

import (
	"fmt"
	"strings"

	"github.com/example/vehicore/models"
)

const (
	Placeholder = "<YOUR_API_KEY>"
	maskLength  = 40
	plateOCR    = "/api/ocr/plate"
	envVar      = "VEHICORE_API_KEY"
)

// Mask hides a key behind a fixed-width run of bullets; the length of the
// real key is not revealed.
func Mask(apiKey string) string {
	if apiKey == "" {
		return ""
	}
	return strings.Repeat("•", maskLength)
}

type Example struct {
	Label  string `json:"label"`
	Code   string `json:"code"`
	Masked string `json:"masked"`
}

type Content struct {
	APIKey    string    `json:"apiKey"`
	HasKey    bool      `json:"hasKey"`
	MaskedKey string    `json:"maskedKey"`
	Env       string    `json:"env"`
	Examples  []Example `json:"examples"`
}

// DisplayKey picks the plaintext to show: the newly created key, then any
// unused key still carrying plaintext.
func DisplayKey(keys []models.APIKey, newlyCreated *models.APIKey) string {
	if newlyCreated != nil {
		if plain := newlyCreated.Plaintext(); plain != "" {
			return plain
		}
	}
	for _, k := range keys {
		if IsKeyUsed(k) {
			continue
		}
		if plain := k.Plaintext(); plain != "" {
			return plain
		}
	}
	return ""
}

// BuildContent renders the integration guide. Code samples carry the
// plaintext only when reveal is set; Masked is always safe to display.
func BuildContent(keys []models.APIKey, newlyCreated *models.APIKey, apiBaseURL string, reveal bool) Content {
	apiKey := DisplayKey(keys, newlyCreated)
	masked := Mask(apiKey)
	baseURL := strings.TrimRight(apiBaseURL, "/")

	c := Content{HasKey: apiKey != "", MaskedKey: masked}
	if reveal {
		c.APIKey = apiKey
	}

	if apiKey == "" {
		c.Env = envVar + "=" + Placeholder
		c.Examples = []Example{
			{Label: "curl", Code: curlExample(baseURL, Placeholder), Masked: curlExample(baseURL, Placeholder)},
			{Label: "node", Code: nodeEnvExample(baseURL), Masked: nodeEnvExample(baseURL)},
			{Label: "python", Code: pythonEnvExample(baseURL), Masked: pythonEnvExample(baseURL)},
		}
		return c
	}

	shown := masked
	if reveal {
		shown = apiKey
	}
	c.Env = envVar + "=" + shown
	c.Examples = []Example{
		{Label: "curl", Code: curlExample(baseURL, shown), Masked: curlExample(baseURL, masked)},
		{Label: "node", Code: nodeExample(baseURL, shown), Masked: nodeExample(baseURL, masked)},
		{Label: "python", Code: pythonExample(baseURL, shown), Masked: pythonExample(baseURL, masked)},
	}
	return c
}

func curlExample(baseURL, key string) string {
	return fmt.Sprintf("curl -X POST \"%s%s\" \\\n"+
		"  -H \"X-API-Key: %s\" \\\n"+
		"  -F \"image=@/path/to/image.jpg\" \\\n"+
		"  -F \"userLanguage=en\"", baseURL, plateOCR, key)
}

func nodeExample(baseURL, key string) string {
	return fmt.Sprintf("const response = await fetch('%s%s', {\n"+
		"  method: 'POST',\n"+
		"  headers: {\n"+
		"    'X-API-Key': '%s'\n"+
		"  },\n"+
		"  body: formData\n"+
		"})", baseURL, plateOCR, key)
}

func nodeEnvExample(baseURL string) string {
	return fmt.Sprintf("const response = await fetch('%s%s', {\n"+
		"  method: 'POST',\n"+
		"  headers: {\n"+
		"    'X-API-Key': process.env.%s\n"+
		"  },\n"+
		"  body: formData\n"+
		"})", baseURL, plateOCR, envVar)
}

func pythonExample(baseURL, key string) string {
	return fmt.Sprintf("import requests\n\n"+
		"headers = {\n"+
		"    'X-API-Key': '%s'\n"+
		"}\n"+
		"files = {'image': open('image.jpg', 'rb')}\n"+
		"data = {'userLanguage': 'en'}\n"+
		"response = requests.post('%s%s', headers=headers, files=files, data=data)", key, baseURL, plateOCR)
}

func pythonEnvExample(baseURL string) string {
	return fmt.Sprintf("import requests\nimport os\n\n"+
		"headers = {\n"+
		"    'X-API-Key': os.getenv('%s')\n"+
		"}\n"+
		"files = {'image': open('image.jpg', 'rb')}\n"+
		"data = {'userLanguage': 'en'}\n"+
		"response = requests.post('%s%s', headers=headers, files=files, data=data)", envVar, baseURL, plateOCR)
}
