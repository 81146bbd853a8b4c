package registry

import (
	"context"
	"fmt"
	"path/filepath"
	"regexp"
	"strings"

	"github.com/nvlabs/deepwatch/internal/errs"
	"github.com/nvlabs/deepwatch/internal/events"
)

// DefaultTruncateLimit is the default maximum character length of a tool
// result before it is truncated with the literal marker below.
const DefaultTruncateLimit = 10000

const truncateMarkerFmt = "[Result truncated: showing first %d of %d characters]"

// repairTable maps a tool name to old-name -> new-name parameter renames.
// Entries never overwrite an already-correct key: if both the old and new
// keys are present, the new key wins and the old one is dropped unused.
var repairTable = map[string]map[string]string{
	"edit_file": {
		"path":     "file_path",
		"old":      "old_code",
		"new":      "new_code",
		"old_text": "old_code",
		"new_text": "new_code",
	},
	"write_file": {
		"path":    "file_path",
		"text":    "content",
		"contents": "content",
	},
	"read_file": {
		"path": "file_path",
	},
	"run_shell": {
		"cmd": "command",
	},
}

var cdCommandRe = regexp.MustCompile(`^\s*cd\s+(\S+)\s*$`)

// Dispatcher wraps a Registry with the cross-cutting call responsibilities:
// parameter repair, read-before-edit enforcement, cd tracking, truncation,
// and event emission.
type Dispatcher struct {
	registry      *Registry
	bus           *events.Bus
	truncateLimit int
}

// NewDispatcher builds a Dispatcher over reg, emitting lifecycle events onto
// bus (may be nil to disable event emission) and truncating results to
// DefaultTruncateLimit unless overridden via WithTruncateLimit.
func NewDispatcher(reg *Registry, bus *events.Bus) *Dispatcher {
	return &Dispatcher{registry: reg, bus: bus, truncateLimit: DefaultTruncateLimit}
}

// WithTruncateLimit overrides the default truncation length.
func (d *Dispatcher) WithTruncateLimit(limit int) *Dispatcher {
	d.truncateLimit = limit
	return d
}

func (d *Dispatcher) emit(typ events.EventType, message, parentID string, meta map[string]interface{}) {
	if d.bus == nil {
		return
	}
	e := events.NewEvent(typ, message, parentID)
	e.Metadata = meta
	d.bus.Emit(e)
}

// repairArgs applies the static rename table for name, never clobbering an
// already-present correct key.
func repairArgs(name string, args map[string]interface{}) map[string]interface{} {
	renames, ok := repairTable[name]
	if !ok {
		return args
	}
	repaired := make(map[string]interface{}, len(args))
	for k, v := range args {
		repaired[k] = v
	}
	for oldKey, newKey := range renames {
		if _, hasOld := repaired[oldKey]; !hasOld {
			continue
		}
		if _, hasNew := repaired[newKey]; hasNew {
			delete(repaired, oldKey)
			continue
		}
		repaired[newKey] = repaired[oldKey]
		delete(repaired, oldKey)
	}
	return repaired
}

func truncate(s string, limit int) string {
	if limit <= 0 || len(s) <= limit {
		return s
	}
	marker := fmt.Sprintf(truncateMarkerFmt, limit, len(s))
	return s[:limit] + "\n" + marker
}

// Call resolves name (via alias), repairs args, enforces read-before-edit
// for edit_file, tracks cd for run_shell, invokes the handler, truncates the
// result (specialist tools' results are returned whole), and emits TOOL_START/TOOL_COMPLETE/TOOL_ERROR around the call.
func (d *Dispatcher) Call(ctx context.Context, session *Session, parentID, name string, args map[string]interface{}) (string, error) {
	fn, ok := d.registry.Lookup(name)
	if !ok {
		err := &ErrUnknownTool{Name: name}
		d.emit(events.ToolError, err.Error(), parentID, map[string]interface{}{"tool": name})
		return "", err
	}

	args = repairArgs(name, args)

	d.emit(events.ToolStart, name, parentID, map[string]interface{}{"tool": name, "args": args})

	if name == "edit_file" {
		if err := d.enforceReadBeforeEdit(session, args); err != nil {
			d.emit(events.ToolError, err.Error(), parentID, map[string]interface{}{"tool": name})
			return "", err
		}
	}

	result, err := fn(session, args)
	if err != nil {
		d.emit(events.ToolError, err.Error(), parentID, map[string]interface{}{"tool": name})
		return "", err
	}

	if name == "run_shell" {
		d.trackCd(session, args)
	}

	if spec, ok := d.registry.Spec(name); !ok || !spec.IsSpecialist {
		result = truncate(result, d.truncateLimit)
	}
	d.emit(events.ToolComplete, name, parentID, map[string]interface{}{"tool": name, "result_length": len(result)})
	return result, nil
}

func (d *Dispatcher) enforceReadBeforeEdit(session *Session, args map[string]interface{}) error {
	raw, _ := args["file_path"].(string)
	if raw == "" {
		return &errs.InvalidArgumentError{Reason: "edit_file requires file_path"}
	}
	abs := raw
	if !filepath.IsAbs(abs) {
		abs = filepath.Join(session.Cwd(), abs)
	}
	abs = filepath.Clean(abs)
	if !session.HasRead(abs) {
		return &errs.InvalidArgumentError{Reason: "file must be read before it can be edited: " + abs}
	}
	return nil
}

func (d *Dispatcher) trackCd(session *Session, args map[string]interface{}) {
	command, _ := args["command"].(string)
	m := cdCommandRe.FindStringSubmatch(command)
	if m == nil {
		return
	}
	target := strings.Trim(m[1], `"'`)
	session.SetCwd(target)
}
