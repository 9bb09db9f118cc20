package znp

import (
	"context"
	"fmt"
	"time"

	"github.com/urmzd/znp/pkg/bus"
	"github.com/urmzd/znp/pkg/mt"
)

// maxPermitJoinSeconds is the largest finite window the ZDO command
// accepts; 255 means "until told otherwise" and is deliberately not
// exposed.
const maxPermitJoinSeconds = 254

// PermitJoin opens the network for joining for the given duration. A nil
// target broadcasts to all routers; otherwise only the addressed device
// opens. A zero duration closes the network.
func (d *Driver) PermitJoin(ctx context.Context, duration time.Duration, target *uint16) error {
	b, err := d.requireRunning()
	if err != nil {
		return err
	}

	seconds := int(duration / time.Second)
	if seconds < 0 {
		return fmt.Errorf("znp: negative permit-join duration")
	}
	if seconds > maxPermitJoinSeconds {
		seconds = maxPermitJoinSeconds
	}

	addrMode := mt.AddrBroadcast
	dst := mt.BroadcastRoutersOnly
	if target != nil {
		addrMode = mt.Addr16Bit
		dst = *target
	}

	args := mt.Args{
		"AddrMode":       uint8(addrMode),
		"DstAddr":        dst,
		"Duration":       uint8(seconds),
		"TCSignificance": uint8(0),
	}

	if target != nil {
		// Unicast requests answer with a MGMT_PERMIT_JOIN_RSP from the
		// target; broadcast ones do not reliably, so only wait then.
		_, err = b.RequestCallback(ctx, mt.ZdoMgmtPermitJoinReq, args,
			bus.MatchFields(mt.ZdoMgmtPermitJoinRsp, mt.Args{"SrcAddr": dst}))
	} else {
		_, err = b.RequestStatus(ctx, mt.ZdoMgmtPermitJoinReq, args)
	}
	if err != nil {
		return err
	}

	remaining := time.Duration(seconds) * time.Second
	d.mu.Lock()
	d.permitUntil = time.Now().Add(remaining)
	d.mu.Unlock()
	d.emit(PermitJoinChanged{Remaining: remaining})

	d.log.Info().Int("seconds", seconds).Msg("Permit join window updated")
	return nil
}

// PermitJoinRemaining reports the authoritative remaining window; zero
// when the network is closed.
func (d *Driver) PermitJoinRemaining() time.Duration {
	d.mu.Lock()
	until := d.permitUntil
	d.mu.Unlock()
	remaining := time.Until(until)
	if remaining < 0 {
		return 0
	}
	return remaining
}
