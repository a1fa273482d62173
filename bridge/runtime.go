package bridge

import (
	"context"
	"slices"
	"sync"

	"github.com/tetratelabs/wazero"
	"github.com/tetratelabs/wazero/api"
	"github.com/tetratelabs/wazero/imports/wasi_snapshot_preview1"
	"go.uber.org/zap"

	"github.com/wippyai/wasm-bridge/errors"
	"github.com/wippyai/wasm-bridge/native"
)

// Runtime owns the wasm engine, the managed host module and the metrics
// shared by every surface loaded from it.
type Runtime struct {
	runtime  wazero.Runtime
	log      *zap.Logger
	metrics  *Metrics
	surfaces map[string]*Surface
	cfg      Config
	mu       sync.Mutex
	hostDone bool
}

// New creates a runtime. cfg may be nil.
func New(ctx context.Context, cfg *Config) (*Runtime, error) {
	c := cfg.withDefaults()

	runtimeCfg := wazero.NewRuntimeConfig().WithMemoryLimitPages(c.MemoryLimitPages)

	return &Runtime{
		runtime:  wazero.NewRuntimeWithConfig(ctx, runtimeCfg),
		log:      c.Logger,
		metrics:  newMetrics(c.Registerer),
		surfaces: make(map[string]*Surface),
		cfg:      c,
	}, nil
}

// Close releases all runtime resources. Every bound surface is closed first,
// so its outstanding buffers are drained from the ledger and the metrics.
func (r *Runtime) Close(ctx context.Context) error {
	r.mu.Lock()
	bound := make([]*Surface, 0, len(r.surfaces))
	for _, s := range r.surfaces {
		bound = append(bound, s)
	}
	r.mu.Unlock()

	var err error
	for _, s := range bound {
		if cerr := s.Close(ctx); cerr != nil && err == nil {
			err = cerr
		}
	}
	if cerr := r.runtime.Close(ctx); err == nil {
		err = cerr
	}
	return err
}

// Metrics returns the runtime's metrics.
func (r *Runtime) Metrics() *Metrics {
	return r.metrics
}

// Load compiles a native library and resolves every declaration against its
// exports before anything is instantiated. Missing exports are reported
// together; a signature mismatch or an import no host provides is reported
// as well. The returned surface is unbound.
func (r *Runtime) Load(ctx context.Context, name string, bin []byte, decls []Declaration) (*Surface, error) {
	if name == "" {
		return nil, errors.InvalidInput(errors.PhaseLoad, "library name cannot be empty")
	}

	compiled, err := r.runtime.CompileModule(ctx, bin)
	if err != nil {
		return nil, errors.Wrap(errors.PhaseLoad, errors.KindInvalidInput, err, "compile "+name)
	}

	bindings, err := resolveExports(name, compiled, decls)
	if err == nil {
		err = checkImports(compiled)
	}
	if err != nil {
		_ = compiled.Close(ctx)
		r.log.Warn("native library rejected", zap.String("library", name), zap.Error(err))
		return nil, err
	}

	r.log.Debug("native library loaded",
		zap.String("library", name),
		zap.Int("declarations", len(bindings)))

	return newSurface(r, name, compiled, bindings), nil
}

func resolveExports(library string, compiled wazero.CompiledModule, decls []Declaration) ([]Binding, error) {
	exported := compiled.ExportedFunctions()

	var missing []string
	var mismatch error
	bindings := make([]Binding, 0, len(decls))

	for _, d := range decls {
		params, err := d.FlatParams()
		if err != nil {
			return nil, err
		}
		results, err := d.FlatResults()
		if err != nil {
			return nil, err
		}

		def, ok := exported[d.Name]
		if !ok {
			missing = append(missing, d.Name)
			continue
		}
		if !slices.Equal(params, def.ParamTypes()) || !slices.Equal(results, def.ResultTypes()) {
			if mismatch == nil {
				mismatch = errors.SignatureMismatch(d.Name,
					flatSignature(params, results),
					flatSignature(def.ParamTypes(), def.ResultTypes()))
			}
			continue
		}

		bindings = append(bindings, Binding{
			Declaration: d,
			Native:      flatSignature(params, results),
		})
	}

	if _, ok := compiled.ExportedMemories()[native.ExportMemory]; !ok {
		missing = append(missing, native.ExportMemory)
	}

	if len(missing) > 0 {
		return nil, errors.NewMissingExportsError(library, missing)
	}
	if mismatch != nil {
		return nil, mismatch
	}
	return bindings, nil
}

// checkImports accepts WASI preview1 functions and the managed functions
// listed in HostImports.
func checkImports(compiled wazero.CompiledModule) error {
	for _, def := range compiled.ImportedFunctions() {
		module, name, _ := def.Import()
		if module == native.WASIModule {
			continue
		}
		if module != native.ManagedModule {
			return missingImport(module, name)
		}
		d, ok := hostImport(name)
		if !ok {
			return missingImport(module, name)
		}
		params, err := d.FlatParams()
		if err != nil {
			return err
		}
		results, err := d.FlatResults()
		if err != nil {
			return err
		}
		if !slices.Equal(def.ParamTypes(), params) || !slices.Equal(def.ResultTypes(), results) {
			return errors.New(errors.PhaseBind, errors.KindSignatureMismatch).
				Export(module + "." + name).
				Detail("declared %s, native imports %s",
					flatSignature(params, results),
					flatSignature(def.ParamTypes(), def.ResultTypes())).
				Build()
		}
	}

	if mems := compiled.ImportedMemories(); len(mems) > 0 {
		module, name, _ := mems[0].Import()
		return missingImport(module, name)
	}

	return nil
}

func missingImport(module, name string) error {
	return errors.New(errors.PhaseBind, errors.KindMissingImport).
		Export(module + "." + name).
		Detail("no host provides this import").
		Build()
}

// ensureHost instantiates WASI and the managed host module once.
func (r *Runtime) ensureHost(ctx context.Context) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if r.hostDone {
		return nil
	}

	if r.runtime.Module(native.WASIModule) == nil {
		if _, err := wasi_snapshot_preview1.Instantiate(ctx, r.runtime); err != nil {
			return errors.New(errors.PhaseBind, errors.KindInstantiation).
				Detail("instantiate WASI").
				Cause(err).
				Build()
		}
	}

	handlers := map[string]api.GoModuleFunc{
		native.ManagedCallback: r.dispatchCallback,
		native.ManagedNotify:   r.dispatchNotify,
	}

	host := r.runtime.NewHostModuleBuilder(native.ManagedModule)
	for _, d := range HostImports {
		params, err := d.FlatParams()
		if err != nil {
			return err
		}
		results, err := d.FlatResults()
		if err != nil {
			return err
		}
		host = host.NewFunctionBuilder().
			WithGoModuleFunction(handlers[d.Name], params, results).
			Export(d.Name)
	}

	if _, err := host.Instantiate(ctx); err != nil {
		return errors.New(errors.PhaseBind, errors.KindInstantiation).
			Detail("instantiate managed host module").
			Cause(err).
			Build()
	}

	r.hostDone = true
	return nil
}

// dispatchCallback routes a callback to the surface whose instance made it.
func (r *Runtime) dispatchCallback(_ context.Context, mod api.Module, stack []uint64) {
	a, b := api.DecodeU32(stack[0]), api.DecodeU32(stack[1])

	r.mu.Lock()
	s := r.surfaces[mod.Name()]
	r.mu.Unlock()

	if s == nil {
		r.log.Warn("callback from unbound library", zap.String("library", mod.Name()))
		return
	}
	s.handleCallback(a, b)
}

// dispatchNotify routes a notify to the surface whose instance made it.
func (r *Runtime) dispatchNotify(_ context.Context, mod api.Module, _ []uint64) {
	r.mu.Lock()
	s := r.surfaces[mod.Name()]
	r.mu.Unlock()

	if s == nil {
		r.log.Warn("notify from unbound library", zap.String("library", mod.Name()))
		return
	}
	s.handleNotify()
}

func (r *Runtime) attach(s *Surface) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.surfaces[s.name]; ok {
		return errors.New(errors.PhaseBind, errors.KindAlreadyBound).
			Export(s.name).
			Detail("another surface is bound under this name").
			Build()
	}
	r.surfaces[s.name] = s
	return nil
}

func (r *Runtime) detach(s *Surface) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.surfaces[s.name] == s {
		delete(r.surfaces, s.name)
	}
}
