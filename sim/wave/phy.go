package wave

import (
	"fmt"
	"math"
	"sort"
	"time"
)

// OFDM timing for 10 MHz channels (802.11p).
const (
	preambleDuration = 32 * time.Microsecond
	signalDuration   = 8 * time.Microsecond
	symbolDuration   = 8 * time.Microsecond
	serviceBits      = 16
	tailBits         = 6
)

// FrameOverhead is the number of bytes added to a UDP payload on air:
// QoS MAC header (26) + FCS (4) + LLC/SNAP (8) + IPv4 (20) + UDP (8).
const FrameOverhead = 26 + 4 + 8 + 20 + 8

// dataBitsPerSymbol maps 10 MHz OFDM data rates (Mbps) to N_DBPS.
var dataBitsPerSymbol = map[float64]int{
	3:   24,
	4.5: 36,
	6:   48,
	9:   72,
	12:  96,
	18:  144,
	24:  192,
	27:  216,
}

// PhyMode is a fixed OFDM transmission mode.
type PhyMode struct {
	DataRateMbps float64
	bitsPerSym   int
}

// NewOfdm10MHzMode returns the 10 MHz OFDM mode for rateMbps.
func NewOfdm10MHzMode(rateMbps float64) (PhyMode, error) {
	nDBPS, ok := dataBitsPerSymbol[rateMbps]
	if !ok {
		return PhyMode{}, fmt.Errorf("unsupported 10 MHz OFDM rate %g Mbps; valid: %v", rateMbps, ValidRates())
	}
	return PhyMode{DataRateMbps: rateMbps, bitsPerSym: nDBPS}, nil
}

// ValidRates lists the supported data rates in ascending order.
func ValidRates() []float64 {
	rates := make([]float64, 0, len(dataBitsPerSymbol))
	for r := range dataBitsPerSymbol {
		rates = append(rates, r)
	}
	sort.Float64s(rates)
	return rates
}

// Name follows the usual OfdmRate<N>MbpsBW10MHz naming.
func (m PhyMode) Name() string {
	return fmt.Sprintf("OfdmRate%gMbpsBW10MHz", m.DataRateMbps)
}

// TxDuration returns the airtime of a frame of frameBytes bytes
// (MAC header and FCS included).
func (m PhyMode) TxDuration(frameBytes int) time.Duration {
	bits := serviceBits + 8*frameBytes + tailBits
	symbols := (bits + m.bitsPerSym - 1) / m.bitsPerSym
	return preambleDuration + signalDuration + time.Duration(symbols)*symbolDuration
}

// DbmToW converts a power level in dBm to watts.
func DbmToW(dbm float64) float64 {
	return math.Pow(10, (dbm-30)/10)
}

// EdcaParams are the contention parameters of one access category.
type EdcaParams struct {
	AIFSN int
	CWMin int
	Slot  time.Duration
	SIFS  time.Duration
}

// DefaultEdcaParams returns AC_BE parameters for 802.11p OCB operation.
func DefaultEdcaParams() EdcaParams {
	return EdcaParams{
		AIFSN: 6,
		CWMin: 15,
		Slot:  13 * time.Microsecond,
		SIFS:  32 * time.Microsecond,
	}
}

// AIFS is the idle time the medium must show before the backoff countdown starts.
func (p EdcaParams) AIFS() time.Duration {
	return p.SIFS + time.Duration(p.AIFSN)*p.Slot
}
