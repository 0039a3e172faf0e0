// Package environ 构造子进程的环境变量列表，不涉及任何进程操作。
package environ

import (
	"strings"

	"github.com/samber/lo"
	"github.com/wangdayong228/envr/internal/envargs"
)

// Build 基于父进程环境快照 parent 构造子进程环境：
// ignoreParent 为 true 时从空环境开始，否则从 parent 的完整拷贝开始；
// 随后按顺序叠加 overlay，同名 key 以最后一次为准。
//
// 返回值永远非 nil，空环境用空切片表示（nil 会让 os/exec 继承当前进程环境）。
func Build(parent []string, ignoreParent bool, overlay []envargs.Variable) []string {
	env := make([]string, 0, len(parent)+len(overlay))
	if !ignoreParent {
		env = append(env, parent...)
	}
	for _, v := range overlay {
		env = Override(env, v.Key, v.Value)
	}
	return env
}

// Override 在 base 环境变量列表上覆盖指定 key=value，并保证结果中该 key 只出现一次。
// 旧条目按 "key=" 前缀剔除，新条目追加到末尾，其余条目保持原有顺序。
func Override(base []string, key, value string) []string {
	prefix := key + "="
	out := make([]string, 0, len(base)+1)
	for _, kv := range base {
		if strings.HasPrefix(kv, prefix) {
			continue
		}
		out = append(out, kv)
	}
	out = append(out, prefix+value)
	return out
}

// Keys 返回 overlay 中出现过的 key（去重，保持首次出现的顺序），用于日志，不暴露值。
func Keys(overlay []envargs.Variable) []string {
	return lo.Uniq(lo.Map(overlay, func(v envargs.Variable, _ int) string {
		return v.Key
	}))
}
