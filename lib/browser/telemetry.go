package browser

import (
	"browsekit/lib/telemetry"
	"browsekit/lib/util/restyutil"
)

var tracer = telemetry.Tracer("browsekit.lib.browser")
var restyInstrumentOutput restyutil.InstrumentOutput

// SetRestyInstrumentOutput makes sessions created afterwards write full
// request/response transcripts to the given output.
func SetRestyInstrumentOutput(out restyutil.InstrumentOutput) {
	restyInstrumentOutput = out
}
