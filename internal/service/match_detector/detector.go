package match_detector

import "github.com/humanbelnik/kinoswap/matchroom/internal/model"

// IsMatch decides whether the swipe just recorded for slot completes a match.
// It expects the swipe to already be in ledgers[slot].
//
// Solo: any like matches. Pair: the partner must already have liked the same
// title. Likes are commutative, so whichever side arrives second completes it.
func IsMatch(mode model.Mode, ledgers map[model.Slot]*model.Ledger, slot model.Slot, id model.TitleID, action model.Action) bool {
	if action != model.ActionLike {
		return false
	}
	if mode == model.ModeSolo {
		return true
	}

	partner, ok := ledgers[slot.Partner()]
	if !ok || partner == nil {
		return false
	}
	return partner.Liked(id)
}
