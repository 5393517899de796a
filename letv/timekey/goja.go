package timekey

import (
	"errors"
	"fmt"
	"os"

	"github.com/dop251/goja"

	"github.com/ytget/letv/internal/logger"
)

// GojaKeyer is ScriptKeyer on the goja engine.
type GojaKeyer struct {
	name    string
	program *goja.Program
}

// NewGojaKeyer compiles src and checks that it defines calcTimeKey.
func NewGojaKeyer(src string) (*GojaKeyer, error) {
	return newGojaKeyer("tkey.js", src)
}

// LoadGojaKeyer reads a script from path.
func LoadGojaKeyer(path string) (*GojaKeyer, error) {
	src, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read tkey script: %w", err)
	}
	return newGojaKeyer(path, string(src))
}

func newGojaKeyer(name, src string) (*GojaKeyer, error) {
	program, err := goja.Compile(name, src, false)
	if err != nil {
		return nil, fmt.Errorf("compile tkey script %s: %w", name, err)
	}
	k := &GojaKeyer{name: name, program: program}
	if _, _, err := k.load(); err != nil {
		return nil, err
	}
	return k, nil
}

func (k *GojaKeyer) load() (*goja.Runtime, goja.Callable, error) {
	vm := goja.New()
	if _, err := vm.RunProgram(k.program); err != nil {
		return nil, nil, fmt.Errorf("run tkey script %s: %w", k.name, err)
	}
	fn, ok := goja.AssertFunction(vm.Get(scriptFuncName))
	if !ok {
		return nil, nil, fmt.Errorf("tkey script %s: %s is not defined", k.name, scriptFuncName)
	}
	return vm, fn, nil
}

// Key implements Keyer.
func (k *GojaKeyer) Key(timestamp int64) (uint32, error) {
	vm, fn, err := k.load()
	if err != nil {
		return 0, err
	}
	res, err := fn(goja.Undefined(), vm.ToValue(timestamp))
	if err != nil {
		return 0, fmt.Errorf("call %s: %w", scriptFuncName, err)
	}
	if goja.IsUndefined(res) || goja.IsNull(res) {
		return 0, errors.New(scriptFuncName + " returned undefined/null")
	}

	var f float64
	switch v := res.Export().(type) {
	case int64:
		f = float64(v)
	case float64:
		f = v
	default:
		return 0, fmt.Errorf("%s returned %q, want a number", scriptFuncName, res.String())
	}
	key, err := toKey(f)
	if err != nil {
		return 0, err
	}

	logger.WithComponent(logger.ComponentTimeKey).Debug("script tkey", map[string]any{
		"engine":    "goja",
		"script":    k.name,
		"timestamp": timestamp,
		"tkey":      key,
	})
	return key, nil
}
