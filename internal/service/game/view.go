package game

// View is the snapshot sent to renderers. Hands stay face down: only
// their sizes are shown.
type View struct {
	Status            Status       `json:"status"`
	Paused            bool         `json:"paused"`
	CurrentPlayerID   string       `json:"currentPlayerId,omitempty"`
	TopCard           *Card        `json:"topCard,omitempty"`
	TablePile         []Card       `json:"tablePile"`
	Players           []PlayerView `json:"players"`
	TurnTimeRemaining int          `json:"turnTimeRemaining"`
	GameTimeRemaining int          `json:"gameTimeRemaining"`
	Winner            *PlayerView  `json:"winner,omitempty"`
	EndReason         EndReason    `json:"endReason,omitempty"`
	LastAction        Action       `json:"lastAction"`
	Message           string       `json:"message"`
}

type PlayerView struct {
	ID                string       `json:"id"`
	Name              string       `json:"name"`
	Status            PlayerStatus `json:"status"`
	HandSize          int          `json:"handSize"`
	ShufflesRemaining int          `json:"shufflesRemaining"`
	AutoPlayCount     int          `json:"autoPlayCount"`
	AvatarColor       string       `json:"avatarColor"`
}

func NewView(s GameState) View {
	v := View{
		Status:            s.Status,
		Paused:            s.Paused,
		TablePile:         append([]Card{}, s.TablePile...),
		Players:           make([]PlayerView, len(s.Players)),
		TurnTimeRemaining: s.TurnTimeRemaining(),
		GameTimeRemaining: s.GameTimeRemaining(),
		EndReason:         s.EndReason,
		LastAction:        s.LastAction,
		Message:           s.Message,
	}
	for i, p := range s.Players {
		v.Players[i] = newPlayerView(p)
	}
	if p, ok := s.CurrentPlayer(); ok {
		v.CurrentPlayerID = p.ID
	}
	if c, ok := s.TopCard(); ok {
		v.TopCard = &c
	}
	if w, ok := s.Winner(); ok {
		pv := newPlayerView(w)
		v.Winner = &pv
	}
	return v
}

func newPlayerView(p Player) PlayerView {
	return PlayerView{
		ID:                p.ID,
		Name:              p.Name,
		Status:            p.Status,
		HandSize:          len(p.Hand),
		ShufflesRemaining: p.ShufflesRemaining,
		AutoPlayCount:     p.AutoPlayCount,
		AvatarColor:       p.AvatarColor,
	}
}
