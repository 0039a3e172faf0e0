package envargs

import (
	"fmt"
	"io"
	"slices"
	"strings"

	"github.com/spf13/pflag"
)

// Separator 之后的所有参数原样作为命令及其参数，不再解析。
const Separator = "--"

// Variable 是一个 KEY=VALUE 形式的环境变量赋值。
type Variable struct {
	Key   string
	Value string
}

func (v Variable) String() string {
	return v.Key + "=" + v.Value
}

// Args 是一次调用解析后的结果。
type Args struct {
	// IgnoreEnvironment 为 true 时子进程不继承当前进程的环境变量。
	IgnoreEnvironment bool
	// Variables 按出现顺序排列，允许重复，应用时后者覆盖前者。
	Variables []Variable
	// CommandAndArgs 第一个元素为可执行文件，其余为其参数。
	CommandAndArgs []string

	Verbose     bool
	ShowHelp    bool
	ShowVersion bool
}

// UsageError 表示命令行输入不合法，Token 为出错的参数（可能为空）。
type UsageError struct {
	Token string
	Msg   string
}

func (e *UsageError) Error() string {
	return e.Msg
}

// NewFlagSet 注册 envr 的全部选项并绑定到 a。
func NewFlagSet(a *Args) *pflag.FlagSet {
	fs := pflag.NewFlagSet("envr", pflag.ContinueOnError)
	fs.SetOutput(io.Discard)
	fs.Usage = func() {}
	fs.SortFlags = false

	fs.BoolVarP(&a.IgnoreEnvironment, "ignore-environment", "i", false, "Do not inherit environment variables from the parent process.")
	fs.BoolVarP(&a.Verbose, "verbose", "v", false, "Log what envr is doing to standard error.")
	fs.BoolVarP(&a.ShowHelp, "help", "h", false, "Print help and exit.")
	fs.BoolVarP(&a.ShowVersion, "version", "V", false, "Print version and exit.")
	return fs
}

// ParseVariable 在第一个 '=' 处切分 s；值中后续的 '=' 原样保留。
func ParseVariable(s string) (Variable, error) {
	key, value, ok := strings.Cut(s, "=")
	if !ok {
		return Variable{}, &UsageError{
			Token: s,
			Msg:   fmt.Sprintf("%q is not an equals-sign-separated key-value pair", s),
		}
	}
	return Variable{Key: key, Value: value}, nil
}

// Parse 将原始参数（不含程序名）解析为 Args。
//
// 解析分两阶段：先确定头部（选项与 KEY=VALUE）与尾部（命令及其参数）的分界，
// 再用 pflag 解析头部。尾部不做任何解释。
func Parse(tokens []string) (*Args, error) {
	head, tail := split(tokens)

	a := &Args{}
	fs := NewFlagSet(a)
	if err := fs.Parse(head); err != nil {
		return nil, &UsageError{Msg: err.Error()}
	}

	for _, tok := range fs.Args() {
		v, err := ParseVariable(tok)
		if err != nil {
			return nil, err
		}
		a.Variables = append(a.Variables, v)
	}

	a.CommandAndArgs = slices.Clone(tail)
	return a, nil
}

// split 确定头部与尾部的分界：
//   - 出现 "--" 时，第一个 "--" 之前全部属于头部，之后全部属于尾部；
//   - 否则贪婪消费选项和含 '=' 的参数，第一个其他参数开始尾部。
func split(tokens []string) (head, tail []string) {
	if i := slices.Index(tokens, Separator); i >= 0 {
		return tokens[:i], tokens[i+1:]
	}
	for i, tok := range tokens {
		if isFlag(tok) || strings.Contains(tok, "=") {
			continue
		}
		return tokens[:i], tokens[i:]
	}
	return tokens, nil
}

func isFlag(tok string) bool {
	return len(tok) > 1 && tok[0] == '-'
}
