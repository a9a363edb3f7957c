package sim

import (
	"unicode/utf8"

	"github.com/rs/zerolog"

	"kestrel/abi"
	"kestrel/kernel"
)

// ZerologSink forwards kernel log frames to a zerolog logger, resolving
// task ids to boot-time names. Payloads that are valid UTF-8 are logged
// as text, anything else as hex.
type ZerologSink struct {
	k   *kernel.Kernel
	log zerolog.Logger
}

func NewZerologSink(k *kernel.Kernel, log zerolog.Logger) *ZerologSink {
	return &ZerologSink{k: k, log: log}
}

func (s *ZerologSink) LogFrame(task abi.TaskID, payload []byte) {
	ev := s.log.Info().
		Uint64("tick", s.k.Now()).
		Str("task", s.k.TaskName(kernel.ThreadRef(task)))
	if utf8.Valid(payload) {
		ev.Str("msg", string(payload)).Send()
		return
	}
	ev.Hex("msg", payload).Send()
}
