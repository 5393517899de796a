package timekey

import (
	"errors"
	"fmt"
	"math"
	"os"

	"github.com/robertkrimen/otto"

	"github.com/ytget/letv/internal/logger"
)

const scriptFuncName = "calcTimeKey"

// ReferenceScript is the key schedule as the player's script expresses it.
// It is what a ScriptKeyer is expected to reproduce until the site changes.
const ReferenceScript = `
var LETV_SECRET = 773625421;

function ror(value, count) {
	for (var i = 0; i < count; i++) {
		value = ((value >>> 1) | ((value & 1) << 31)) >>> 0;
	}
	return value;
}

function calcTimeKey(ts) {
	var key = ror(ts, LETV_SECRET % 13);
	key = (key ^ LETV_SECRET) >>> 0;
	return ror(key, LETV_SECRET % 17);
}
`

// ScriptKeyer derives tokens by calling calcTimeKey(ts) in a JavaScript
// source. Each call runs in a fresh interpreter, so a ScriptKeyer is safe
// for concurrent use.
type ScriptKeyer struct {
	name   string
	source string
}

// NewScriptKeyer compiles src and checks that it defines calcTimeKey.
func NewScriptKeyer(src string) (*ScriptKeyer, error) {
	return newScriptKeyer("tkey.js", src)
}

// LoadScriptKeyer reads a script from path.
func LoadScriptKeyer(path string) (*ScriptKeyer, error) {
	src, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read tkey script: %w", err)
	}
	return newScriptKeyer(path, string(src))
}

func newScriptKeyer(name, src string) (*ScriptKeyer, error) {
	k := &ScriptKeyer{name: name, source: src}
	vm, err := k.load()
	if err != nil {
		return nil, err
	}
	fn, err := vm.Get(scriptFuncName)
	if err != nil || !fn.IsFunction() {
		return nil, fmt.Errorf("tkey script %s: %s is not defined", name, scriptFuncName)
	}
	return k, nil
}

func (k *ScriptKeyer) load() (*otto.Otto, error) {
	vm := otto.New()
	script, err := vm.Compile(k.name, k.source)
	if err != nil {
		return nil, fmt.Errorf("compile tkey script %s: %w", k.name, err)
	}
	if _, err := vm.Run(script); err != nil {
		return nil, fmt.Errorf("run tkey script %s: %w", k.name, err)
	}
	return vm, nil
}

// Key implements Keyer.
func (k *ScriptKeyer) Key(timestamp int64) (uint32, error) {
	vm, err := k.load()
	if err != nil {
		return 0, err
	}
	value, err := vm.Call(scriptFuncName, nil, timestamp)
	if err != nil {
		return 0, fmt.Errorf("call %s: %w", scriptFuncName, err)
	}
	if !value.IsNumber() {
		return 0, fmt.Errorf("%s returned %q, want a number", scriptFuncName, value.String())
	}
	f, err := value.ToFloat()
	if err != nil {
		return 0, err
	}
	key, err := toKey(f)
	if err != nil {
		return 0, err
	}

	logger.WithComponent(logger.ComponentTimeKey).Debug("script tkey", map[string]any{
		"engine":    "otto",
		"script":    k.name,
		"timestamp": timestamp,
		"tkey":      key,
	})
	return key, nil
}

// toKey accepts both the unsigned and the signed 32-bit reading of a
// script result.
func toKey(f float64) (uint32, error) {
	if math.IsNaN(f) || math.IsInf(f, 0) || f != math.Trunc(f) || f < math.MinInt32 || f > math.MaxUint32 {
		return 0, errors.New(scriptFuncName + " returned a value outside the 32-bit range")
	}
	return uint32(int64(f)), nil
}
