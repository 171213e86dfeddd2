package main

import (
	"github.com/rs/zerolog"

	"github.com/datar-psa/answereval/config"
	"github.com/datar-psa/answereval/internal/logger"
)

type AnswerEvalCommand struct {
	Config    string `short:"c" long:"config" description:"YAML configuration file. ANSWEREVAL_* environment variables override it."`
	LogLevel  string `long:"log-level" choice:"debug" choice:"info" choice:"warn" choice:"error" description:"Minimum log level (default from config: info)"`
	LogFormat string `long:"log-format" choice:"console" choice:"json" description:"Log output format (default from config: console)"`

	Collect  CollectCommand  `command:"collect"  description:"Collect model answers for a test case file."`
	Evaluate EvaluateCommand `command:"evaluate" description:"Score a results file and write the reports."`
}

// NewCommand wires the subcommands to the global options
func NewCommand() *AnswerEvalCommand {
	cmd := &AnswerEvalCommand{}
	cmd.Collect.root = cmd
	cmd.Evaluate.root = cmd
	return cmd
}

// setup loads the configuration and builds the logger, flags taking precedence over the config
func (cmd *AnswerEvalCommand) setup() (*config.Config, zerolog.Logger, error) {
	cfg, err := config.Load(cmd.Config)
	if err != nil {
		return nil, zerolog.Nop(), err
	}
	if cmd.LogLevel != "" {
		cfg.Log.Level = cmd.LogLevel
	}
	if cmd.LogFormat != "" {
		cfg.Log.Format = cmd.LogFormat
	}
	return cfg, logger.New(cfg.Log.Level, cfg.Log.Format), nil
}
