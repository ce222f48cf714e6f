// Package ai defines the text generation port used to draft outreach emails.
package ai

import "context"

// Generator turns a prompt into free text.
type Generator interface {
	GenerateContent(ctx context.Context, prompt string) (string, error)
}
