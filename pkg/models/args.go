package models

type TestArgs struct {
	ProblemDir string
	Language   string
	TimeoutMs  int
	Watch      bool
	JSON       bool
}

type GlobalArgs struct {
	ConfigPath string
	Debug      bool
}
