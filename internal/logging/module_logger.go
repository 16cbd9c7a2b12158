package logging

import (
	"context"
	"strings"

	"github.com/goliatone/go-site-builder/pkg/interfaces"
)

const (
	rootModule       = "sitebuilder"
	normalizerModule = "sitebuilder.normalizer"
	builderModule    = "sitebuilder.builder"
	templatesModule  = "sitebuilder.templates"
	documentsModule  = "sitebuilder.documents"
	commandsModule   = "sitebuilder.commands"
)

const (
	fieldDocumentID   = "document_id"
	fieldDocumentType = "document_type"
	fieldOperation    = "operation"
)

// ModuleLogger returns a module-scoped logger, defaulting to a no-op
// implementation when no provider is supplied. The returned logger attaches
// the module identifier as structured context so downstream entries can be
// filtered predictably.
func ModuleLogger(provider interfaces.LoggerProvider, module string) interfaces.Logger {
	if module == "" {
		module = rootModule
	}

	logger := NoOp()
	if provider != nil {
		if provided := provider.GetLogger(module); provided != nil {
			logger = provided
		}
	}

	return WithFields(logger, map[string]any{
		"module": module,
	})
}

// NormalizerLogger returns the logger namespace reserved for the schema normalizer.
func NormalizerLogger(provider interfaces.LoggerProvider) interfaces.Logger {
	return ModuleLogger(provider, normalizerModule)
}

// BuilderLogger returns the logger namespace reserved for builder sessions.
func BuilderLogger(provider interfaces.LoggerProvider) interfaces.Logger {
	return ModuleLogger(provider, builderModule)
}

// TemplatesLogger returns the logger namespace reserved for the template catalog.
func TemplatesLogger(provider interfaces.LoggerProvider) interfaces.Logger {
	return ModuleLogger(provider, templatesModule)
}

// DocumentsLogger returns the logger namespace reserved for document storage.
func DocumentsLogger(provider interfaces.LoggerProvider) interfaces.Logger {
	return ModuleLogger(provider, documentsModule)
}

// CommandsLogger returns a logger scoped below the commands namespace, e.g. sitebuilder.commands.documents.
func CommandsLogger(provider interfaces.LoggerProvider, name string) interfaces.Logger {
	name = strings.Trim(strings.TrimSpace(name), ".")
	if name == "" {
		return ModuleLogger(provider, commandsModule)
	}
	return ModuleLogger(provider, commandsModule+"."+name)
}

// WithDocumentContext enriches logger with the document id, type and the operation being
// performed. Empty values are ignored.
func WithDocumentContext(logger interfaces.Logger, documentID, documentType, operation string) interfaces.Logger {
	fields := map[string]any{}
	if trimmed := strings.TrimSpace(documentID); trimmed != "" {
		fields[fieldDocumentID] = trimmed
	}
	if trimmed := strings.TrimSpace(documentType); trimmed != "" {
		fields[fieldDocumentType] = trimmed
	}
	if trimmed := strings.TrimSpace(operation); trimmed != "" {
		fields[fieldOperation] = trimmed
	}
	return WithFields(logger, fields)
}

// NoOp returns a logger that drops every log entry. It satisfies the Logger
// contract so services can safely operate when logging is disabled.
func NoOp() interfaces.Logger {
	return noopLogger{}
}

type noopLogger struct{}

var _ interfaces.Logger = noopLogger{}

func (noopLogger) Trace(string, ...any) {}
func (noopLogger) Debug(string, ...any) {}
func (noopLogger) Info(string, ...any)  {}
func (noopLogger) Warn(string, ...any)  {}
func (noopLogger) Error(string, ...any) {}
func (noopLogger) Fatal(string, ...any) {}

func (n noopLogger) WithFields(map[string]any) interfaces.Logger {
	return n
}

func (n noopLogger) WithContext(context.Context) interfaces.Logger {
	return n
}
