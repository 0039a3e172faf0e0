package cmd

import (
	"fmt"
	"io"
	"os"
	"slices"

	"github.com/fatih/color"
	"github.com/pkg/errors"
	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"
	"github.com/wangdayong228/envr/internal/constants/enums"
	"github.com/wangdayong228/envr/internal/envargs"
	"github.com/wangdayong228/envr/internal/launcher"
)

// Version 可通过 -ldflags "-X github.com/wangdayong228/envr/cmd.Version=..." 覆盖。
var Version = "dev"

var fatalPrefix = color.New(color.FgRed, color.Bold)

// LauncherFactory 根据 logger 构造 Launcher，测试中替换为使用 mock spawner 的实现。
type LauncherFactory func(logger *logrus.Logger) *launcher.Launcher

// Execute 入口
func Execute() {
	os.Exit(Run(os.Args[1:], os.Stdout, os.Stderr, launcher.DefaultLauncher))
}

// Run 执行一次 envr 调用并返回进程应使用的退出码。所有退出路径都经由这里。
func Run(args []string, stdout, stderr io.Writer, newLauncher LauncherFactory) int {
	var outcome launcher.Outcome
	tokens := slices.Clone(args)

	// 参数不交给 cobra：像 "__complete" 这样的首参数会被 cobra 当作内部命令处理，
	// 而 envr 要求命令及其参数原样透传。
	rootCmd := newRootCmd(func(cmd *cobra.Command, _ []string) {
		outcome = execute(cmd, tokens, newLauncher)
	})
	rootCmd.SetArgs([]string{})
	rootCmd.SetOut(stdout)
	rootCmd.SetErr(stderr)

	if err := rootCmd.Execute(); err != nil {
		outcome = launcher.Usage(err)
	}
	return report(rootCmd, outcome, stderr)
}

// report 输出失败信息并返回退出码；未被处理的零值 Outcome 视为用法错误。
func report(rootCmd *cobra.Command, outcome launcher.Outcome, stderr io.Writer) int {
	if outcome.Kind == 0 {
		outcome = launcher.Usage(errors.New("invocation was not handled"))
	}

	switch {
	case !outcome.Kind.IsFatal():
	case outcome.Kind == enums.OutcomeKindUsageError:
		fmt.Fprintf(stderr, "error: %s\n\n", outcome.Message)
		fmt.Fprint(stderr, rootCmd.UsageString())
	default:
		fmt.Fprintf(stderr, "%s %s\n", fatalPrefix.Sprint("fatal:"), outcome.Message)
	}
	return outcome.Code
}

func newRootCmd(run func(cmd *cobra.Command, tokens []string)) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "envr [OPTIONS] [KEY=VALUE]... [--] [COMMAND [ARG]...]",
		Short: "在自定义的环境变量下运行命令",
		Long: `envr 可选地清空继承的环境变量，叠加给定的 KEY=VALUE，然后运行 COMMAND，
并以子进程的退出码退出。

"--" 之后的参数原样传给 COMMAND；存在 "--" 时，它之前只能是选项或 KEY=VALUE。
没有 "--" 时，第一个既不是选项也不含 '=' 的参数即为 COMMAND。

退出码：
  101  未指定命令
  102  子进程启动失败
  103  等待子进程结束失败`,
		DisableFlagParsing: true,
		SilenceErrors:      true,
		SilenceUsage:       true,
		CompletionOptions:  cobra.CompletionOptions{DisableDefaultCmd: true},
		Run:                run,
	}

	// 仅用于帮助信息展示，真正的解析在 envargs.Parse 中完成。
	cmd.Flags().AddFlagSet(envargs.NewFlagSet(&envargs.Args{}))
	return cmd
}

func execute(cmd *cobra.Command, tokens []string, newLauncher LauncherFactory) launcher.Outcome {
	args, err := envargs.Parse(tokens)
	if err != nil {
		return launcher.Usage(err)
	}

	switch {
	case args.ShowHelp:
		_ = cmd.Help()
		return launcher.Outcome{Kind: enums.OutcomeKindSuccess, Code: launcher.ExitSuccess}
	case args.ShowVersion:
		fmt.Fprintf(cmd.OutOrStdout(), "envr %s\n", Version)
		return launcher.Outcome{Kind: enums.OutcomeKindSuccess, Code: launcher.ExitSuccess}
	}

	logger := newLogger(cmd.ErrOrStderr(), args.Verbose)
	logger.WithFields(logrus.Fields{
		"ignore_environment": args.IgnoreEnvironment,
		"variables":          len(args.Variables),
		"command_and_args":   len(args.CommandAndArgs),
	}).Debug("parsed invocation")

	return newLauncher(logger).Launch(args)
}

func newLogger(w io.Writer, verbose bool) *logrus.Logger {
	logger := logrus.New()
	logger.SetOutput(w)
	logger.SetFormatter(&logrus.TextFormatter{DisableTimestamp: true})
	logger.SetLevel(logrus.WarnLevel)
	if verbose {
		logger.SetLevel(logrus.DebugLevel)
	}
	return logger
}
