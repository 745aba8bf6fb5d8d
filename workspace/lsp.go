package workspace

import (
	"net/url"
	"path/filepath"
	"strings"
	"sync"

	"github.com/tliron/glsp"
	protocol "github.com/tliron/glsp/protocol_3_16"
	"github.com/tliron/glsp/server"

	"github.com/PaperTsar/javasema/java/parser"
	"github.com/PaperTsar/javasema/java/sema"
	"github.com/PaperTsar/javasema/java/symbols"
)

const lsName = "javasema"

// LSPServer serves semantic diagnostics over the language server protocol.
// Opening, changing and saving a document reanalyzes it and publishes the
// findings; a background watcher does the same for files edited outside
// the client.
type LSPServer struct {
	ts      *symbols.TypeSystem
	base    symbols.Resolver
	ws      *Workspace
	watcher *Watcher
	handler protocol.Handler
	server  *server.Server
	version string

	notifyMu sync.Mutex
	notify   glsp.NotifyFunc
}

// NewLSPServer wires the protocol handlers. The workspace itself is built
// on initialize, once the client names its root.
func NewLSPServer(version string, ts *symbols.TypeSystem, base symbols.Resolver) *LSPServer {
	ls := &LSPServer{
		ts:      ts,
		base:    base,
		version: version,
	}

	ls.handler = protocol.Handler{
		Initialize:            ls.initialize,
		Initialized:           ls.initialized,
		Shutdown:              ls.shutdown,
		SetTrace:              ls.setTrace,
		TextDocumentDidOpen:   ls.textDocumentDidOpen,
		TextDocumentDidChange: ls.textDocumentDidChange,
		TextDocumentDidClose:  ls.textDocumentDidClose,
		TextDocumentDidSave:   ls.textDocumentDidSave,
	}

	ls.server = server.NewServer(&ls.handler, lsName, false)

	return ls
}

func (ls *LSPServer) RunStdio() error {
	return ls.server.RunStdio()
}

func (ls *LSPServer) initialize(ctx *glsp.Context, params *protocol.InitializeParams) (any, error) {
	rootDir := "."
	if params.RootPath != nil && *params.RootPath != "" {
		rootDir = *params.RootPath
	} else if params.RootURI != nil && *params.RootURI != "" {
		if path, err := uriToPath(*params.RootURI); err == nil {
			rootDir = path
		}
	}

	ls.ws = New(rootDir, ls.ts, ls.base)

	capabilities := ls.handler.CreateServerCapabilities()
	capabilities.TextDocumentSync = &protocol.TextDocumentSyncOptions{
		OpenClose: boolPtr(true),
		Change:    syncKind(protocol.TextDocumentSyncKindFull),
		Save: &protocol.SaveOptions{
			IncludeText: boolPtr(true),
		},
	}

	return protocol.InitializeResult{
		Capabilities: capabilities,
		ServerInfo: &protocol.InitializeResultServerInfo{
			Name:    lsName,
			Version: &ls.version,
		},
	}, nil
}

func (ls *LSPServer) initialized(ctx *glsp.Context, params *protocol.InitializedParams) error {
	ls.captureNotify(ctx)
	ls.ws.ScanAll()
	for _, path := range ls.ws.Files() {
		ls.publish(pathToURI(path), path)
	}
	ls.watcher = NewWatcher(ls.ws, func(path string) {
		ls.publish(pathToURI(path), path)
	})
	ls.watcher.Start()
	return nil
}

func (ls *LSPServer) shutdown(ctx *glsp.Context) error {
	if ls.watcher != nil {
		ls.watcher.Stop()
		ls.watcher = nil
	}
	return nil
}

func (ls *LSPServer) setTrace(ctx *glsp.Context, params *protocol.SetTraceParams) error {
	protocol.SetTraceValue(params.Value)
	return nil
}

func (ls *LSPServer) textDocumentDidOpen(ctx *glsp.Context, params *protocol.DidOpenTextDocumentParams) error {
	ls.captureNotify(ctx)
	path, err := uriToPath(params.TextDocument.URI)
	if err != nil {
		return nil
	}
	ls.ws.UpdateFile(path, []byte(params.TextDocument.Text))
	ls.publish(params.TextDocument.URI, path)
	return nil
}

func (ls *LSPServer) textDocumentDidChange(ctx *glsp.Context, params *protocol.DidChangeTextDocumentParams) error {
	ls.captureNotify(ctx)
	path, err := uriToPath(params.TextDocument.URI)
	if err != nil {
		return nil
	}

	// Full sync: the last content change carries the whole document.
	var content string
	var whole bool
	for _, change := range params.ContentChanges {
		switch c := change.(type) {
		case protocol.TextDocumentContentChangeEventWhole:
			content, whole = c.Text, true
		case protocol.TextDocumentContentChangeEvent:
			if c.Range == nil {
				content, whole = c.Text, true
			}
		}
	}
	if !whole {
		return nil
	}

	ls.ws.UpdateFile(path, []byte(content))
	ls.publish(params.TextDocument.URI, path)
	return nil
}

func (ls *LSPServer) textDocumentDidClose(ctx *glsp.Context, params *protocol.DidCloseTextDocumentParams) error {
	ls.captureNotify(ctx)
	path, err := uriToPath(params.TextDocument.URI)
	if err != nil {
		return nil
	}
	ls.ws.CloseFile(path)
	ls.publish(params.TextDocument.URI, path)
	return nil
}

func (ls *LSPServer) textDocumentDidSave(ctx *glsp.Context, params *protocol.DidSaveTextDocumentParams) error {
	ls.captureNotify(ctx)
	path, err := uriToPath(params.TextDocument.URI)
	if err != nil {
		return nil
	}
	if params.Text != nil {
		ls.ws.UpdateFile(path, []byte(*params.Text))
	} else {
		ls.ws.ScanFile(path)
	}
	ls.publish(params.TextDocument.URI, path)
	return nil
}

// captureNotify stores the notification function so diagnostics can be
// published outside a handler, from the watcher.
func (ls *LSPServer) captureNotify(ctx *glsp.Context) {
	ls.notifyMu.Lock()
	ls.notify = ctx.Notify
	ls.notifyMu.Unlock()
}

func (ls *LSPServer) sendNotification(method string, params any) {
	ls.notifyMu.Lock()
	fn := ls.notify
	ls.notifyMu.Unlock()
	if fn != nil {
		fn(method, params)
	}
}

func (ls *LSPServer) publish(uri string, path string) {
	var diags []sema.Diagnostic
	if f := ls.ws.GetFile(path); f != nil {
		diags = f.Diags
	}
	ls.sendNotification(protocol.ServerTextDocumentPublishDiagnostics, &protocol.PublishDiagnosticsParams{
		URI:         uri,
		Diagnostics: lspDiagnostics(diags),
	})
}

// lspDiagnostics converts collected findings to protocol diagnostics. The
// result is never nil, so publishing an empty list clears stale findings
// on the client.
func lspDiagnostics(diags []sema.Diagnostic) []protocol.Diagnostic {
	out := make([]protocol.Diagnostic, 0, len(diags))
	for _, d := range diags {
		sev := lspSeverity(d.Severity)
		out = append(out, protocol.Diagnostic{
			Range:    rangeAt(d.Pos),
			Severity: &sev,
			Source:   strPtr(lsName),
			Message:  d.Message,
		})
	}
	return out
}

func lspSeverity(sev sema.Severity) protocol.DiagnosticSeverity {
	switch sev {
	case sema.SeverityError:
		return protocol.DiagnosticSeverityError
	case sema.SeverityWarning:
		return protocol.DiagnosticSeverityWarning
	case sema.SeverityInfo:
		return protocol.DiagnosticSeverityInformation
	default:
		return protocol.DiagnosticSeverityHint
	}
}

// rangeAt is the zero-width protocol range at a reported position.
// Protocol positions are zero-based where the reporter's are one-based.
func rangeAt(pos parser.Position) protocol.Range {
	p := protocol.Position{Line: zeroBased(pos.Line), Character: zeroBased(pos.Column)}
	return protocol.Range{Start: p, End: p}
}

func zeroBased(n int) protocol.UInteger {
	if n < 1 {
		return 0
	}
	return protocol.UInteger(n - 1)
}

func uriToPath(uri string) (string, error) {
	if strings.HasPrefix(uri, "file://") {
		parsed, err := url.Parse(uri)
		if err != nil {
			return "", err
		}
		return filepath.Clean(parsed.Path), nil
	}
	return uri, nil
}

func pathToURI(path string) string {
	if strings.HasPrefix(path, "/") {
		return "file://" + path
	}
	return path
}

func boolPtr(b bool) *bool {
	return &b
}

func strPtr(s string) *string {
	return &s
}

func syncKind(k protocol.TextDocumentSyncKind) *protocol.TextDocumentSyncKind {
	return &k
}
