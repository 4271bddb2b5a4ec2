package ocr

import (
	"github.com/otiai10/gosseract/v2"
)

// DefaultWhitelist is empty: Tesseract may emit any character. Exam text
// relies on blanks, question marks, quotes and operators, so a restriction
// is opt-in through WithWhitelist.
const DefaultWhitelist = ""

// EngineMode selects the Tesseract recognition engine. It can only be set when
// the engine initialises, so it travels through a config file.
type EngineMode int

const (
	EngineLegacyOnly EngineMode = iota
	EngineLSTMOnly
	EngineLegacyAndLSTM
	EngineDefault
)

type settings struct {
	language    string
	whitelist   string
	pageSegMode gosseract.PageSegMode
	engineMode  EngineMode
	variables   map[string]string
}

func defaultSettings() settings {
	return settings{
		language:    "eng",
		whitelist:   DefaultWhitelist,
		pageSegMode: gosseract.PSM_AUTO,
		engineMode:  EngineLSTMOnly,
		variables:   map[string]string{},
	}
}

// Option configures a Recognizer.
type Option func(*settings)

// WithLanguage sets the language used when a call passes no hint.
func WithLanguage(lang string) Option {
	return func(s *settings) { s.language = lang }
}

// WithWhitelist restricts recognition to chars. An empty string lifts the
// restriction.
func WithWhitelist(chars string) Option {
	return func(s *settings) { s.whitelist = chars }
}

func WithPageSegMode(mode gosseract.PageSegMode) Option {
	return func(s *settings) { s.pageSegMode = mode }
}

func WithEngineMode(mode EngineMode) Option {
	return func(s *settings) { s.engineMode = mode }
}

// WithVariable passes an arbitrary Tesseract variable through to the engine.
func WithVariable(key, value string) Option {
	return func(s *settings) { s.variables[key] = value }
}
