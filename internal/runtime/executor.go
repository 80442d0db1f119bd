package runtime

// Executor is the script execution service the codec delegates to: export
// roots are produced by running their name as a script on encode, and
// reconstructed function bodies compile lazily on first invocation.
type Executor interface {
	// RunScript compiles and runs source, returning its completion value.
	RunScript(source string) (Value, error)

	// CompileFunction compiles f's body from its script span.
	CompileFunction(f *Function) error
}

// NopExecutor is an Executor that runs nothing. Useful when verifying
// snapshots without a script engine attached.
type NopExecutor struct{}

// RunScript returns undefined.
func (NopExecutor) RunScript(string) (Value, error) {
	return Undefined(), nil
}

// CompileFunction succeeds without compiling.
func (NopExecutor) CompileFunction(*Function) error {
	return nil
}
