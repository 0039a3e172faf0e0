package enums

import (
	"github.com/nft-rainbow/rainbow-goutils/utils/enumutils"
)

// OutcomeKind 表示一次 envr 调用的最终结果类别，每一类对应一个固定的退出码。
type OutcomeKind int8

const (
	OutcomeKindSuccess OutcomeKind = iota + 1
	OutcomeKindUsageError
	OutcomeKindMissingCommand
	OutcomeKindSpawnFailure
	OutcomeKindWaitFailure
)

var OutcomeKindEb enumutils.EnumBase[OutcomeKind]

func init() {
	OutcomeKindEb = enumutils.NewEnumBase("OutcomeKind", map[OutcomeKind]string{
		OutcomeKindSuccess:        "success",
		OutcomeKindUsageError:     "usage-error",
		OutcomeKindMissingCommand: "missing-command",
		OutcomeKindSpawnFailure:   "spawn-failure",
		OutcomeKindWaitFailure:    "wait-failure",
	})
}

func (k OutcomeKind) MarshalText() ([]byte, error) {
	return OutcomeKindEb.MarshalText(k)
}

func (k *OutcomeKind) UnmarshalText(data []byte) error {
	val, err := OutcomeKindEb.UnmarshalText(data)
	if err != nil {
		return err
	}
	*k = val
	return nil
}

func (k OutcomeKind) String() string {
	return OutcomeKindEb.String(k)
}

// IsFatal 表示该结果是否由 envr 自身的失败导致（而非子进程的退出状态）。
func (k OutcomeKind) IsFatal() bool {
	return k != OutcomeKindSuccess
}

func ParseOutcomeKind(s string) (OutcomeKind, error) {
	return OutcomeKindEb.Parse(s)
}
