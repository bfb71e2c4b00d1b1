// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package engines

import (
	"fmt"
	"os"
	"strings"

	"github.com/jhillyerd/enmime"
	"github.com/microcosm-cc/bluemonday"

	"github.com/savagelysubtle/transmute/internal/registry"
)

// emlMarkdownPlugin converts an RFC 5322 email to Markdown: a header block
// followed by the message body. HTML bodies go through the same sanitize-
// then-convert pipeline as standalone HTML files.
func emlMarkdownPlugin() registry.Plugin {
	policy := bluemonday.UGCPolicy()

	return registry.Plugin{
		Source:          "eml",
		Target:          "md",
		Name:            "eml-markdown",
		Description:     "Convert email messages to Markdown",
		Version:         version,
		Author:          author,
		Priority:        10,
		SupportsBatch:   true,
		SupportsOptions: true,
		MaxFileSizeMB:   50,
		Convert: func(input, output string, options map[string]any) (string, error) {
			if output == "" {
				output = defaultOutput(input, ".md")
			}

			f, err := os.Open(input)
			if err != nil {
				return "", fmt.Errorf("opening %s: %w", input, err)
			}
			defer f.Close()

			env, err := enmime.ReadEnvelope(f)
			if err != nil {
				return "", fmt.Errorf("parsing email %s: %w", input, err)
			}

			md, err := envelopeToMarkdown(policy, env)
			if err != nil {
				return "", fmt.Errorf("converting %s: %w", input, err)
			}

			if err := os.WriteFile(output, []byte(md), 0o644); err != nil {
				return "", fmt.Errorf("writing %s: %w", output, err)
			}
			return output, nil
		},
	}
}

func envelopeToMarkdown(policy *bluemonday.Policy, env *enmime.Envelope) (string, error) {
	var b strings.Builder

	subject := env.GetHeader("Subject")
	if subject == "" {
		subject = "(no subject)"
	}
	fmt.Fprintf(&b, "# %s\n\n", subject)
	for _, h := range []string{"From", "To", "Cc", "Date"} {
		if v := env.GetHeader(h); v != "" {
			fmt.Fprintf(&b, "- **%s:** %s\n", h, v)
		}
	}
	b.WriteString("\n---\n\n")

	switch {
	case env.HTML != "":
		body, err := htmlToMarkdown(policy, []byte(env.HTML))
		if err != nil {
			return "", err
		}
		b.WriteString(body)
	default:
		b.WriteString(env.Text)
	}

	if len(env.Attachments) > 0 {
		b.WriteString("\n\n## Attachments\n\n")
		for _, a := range env.Attachments {
			fmt.Fprintf(&b, "- %s (%s)\n", a.FileName, a.ContentType)
		}
	}

	return b.String(), nil
}
