package game

type Status string

const (
	StatusSetup    Status = "setup"
	StatusPlaying  Status = "playing"
	StatusFinished Status = "finished"
)

type PlayerStatus string

const (
	PlayerActive   PlayerStatus = "active"
	PlayerInactive PlayerStatus = "inactive"
	PlayerKicked   PlayerStatus = "kicked"
	PlayerWinner   PlayerStatus = "winner"
	PlayerLoser    PlayerStatus = "loser"
)

// Action names the last transition applied, so a renderer can pick the
// matching animation.
type Action string

const (
	ActionNone     Action = "none"
	ActionHit      Action = "hit"
	ActionCapture  Action = "capture"
	ActionShuffle  Action = "shuffle"
	ActionAutoPlay Action = "auto_play"
	ActionKicked   Action = "kicked"
	ActionTimeUp   Action = "timeout"
	ActionPause    Action = "pause"
	ActionResume   Action = "resume"
)

type EndReason string

const (
	EndNone             EndReason = ""
	EndLastPlayer       EndReason = "last_player"
	EndTimeUp           EndReason = "time_up"
	EndNoEligiblePlayer EndReason = "no_eligible_player"
)

type Player struct {
	ID                string       `json:"id"`
	Name              string       `json:"name"`
	Hand              []Card       `json:"hand"`
	Status            PlayerStatus `json:"status"`
	ShufflesRemaining int          `json:"shufflesRemaining"`
	AutoPlayCount     int          `json:"autoPlayCount"`
	AvatarColor       string       `json:"avatarColor"`
}

// Eligible reports whether the player can take a turn.
func (p Player) Eligible() bool {
	return p.Status == PlayerActive && len(p.Hand) > 0
}

// GameState is one immutable step of a game. Engine transitions copy it
// and return the successor; nothing mutates a state after it is returned.
//
// Clock counts ticks spent playing and unpaused. TurnStartTime and
// GameStartTime are readings of that clock, so pausing freezes both
// budgets without any bookkeeping on resume.
type GameState struct {
	Players            []Player  `json:"players"`
	CurrentPlayerIndex int       `json:"currentPlayerIndex"`
	TablePile          []Card    `json:"tablePile"`
	Status             Status    `json:"status"`
	WinnerIndex        int       `json:"winnerIndex"`
	EndReason          EndReason `json:"endReason,omitempty"`
	Clock              int       `json:"clock"`
	TurnStartTime      int       `json:"turnStartTime"`
	GameStartTime      int       `json:"gameStartTime"`
	Paused             bool      `json:"paused"`
	LastAction         Action    `json:"lastAction"`
	Message            string    `json:"message"`
	Rules              Rules     `json:"rules"`
}

// SetupState is the empty state shown before a game starts.
func SetupState(rules Rules) GameState {
	return GameState{
		Status:      StatusSetup,
		WinnerIndex: -1,
		LastAction:  ActionNone,
		Rules:       rules,
	}
}

// Clone deep-copies the hands and the pile.
func (s GameState) Clone() GameState {
	out := s
	out.Players = make([]Player, len(s.Players))
	for i, p := range s.Players {
		p.Hand = cloneCards(p.Hand)
		out.Players[i] = p
	}
	out.TablePile = cloneCards(s.TablePile)
	return out
}

func cloneCards(c []Card) []Card {
	if c == nil {
		return nil
	}
	out := make([]Card, len(c))
	copy(out, c)
	return out
}

func (s GameState) CurrentPlayer() (Player, bool) {
	if s.Status != StatusPlaying || s.CurrentPlayerIndex < 0 || s.CurrentPlayerIndex >= len(s.Players) {
		return Player{}, false
	}
	return s.Players[s.CurrentPlayerIndex], true
}

func (s GameState) TopCard() (Card, bool) {
	if len(s.TablePile) == 0 {
		return Card{}, false
	}
	return s.TablePile[len(s.TablePile)-1], true
}

func (s GameState) HandSizes() []int {
	sizes := make([]int, len(s.Players))
	for i, p := range s.Players {
		sizes[i] = len(p.Hand)
	}
	return sizes
}

// TurnTimeRemaining is the number of ticks left on the current turn.
func (s GameState) TurnTimeRemaining() int {
	if s.Status != StatusPlaying {
		return s.Rules.TurnTimeLimit
	}
	return max(0, s.Rules.TurnTimeLimit-(s.Clock-s.TurnStartTime))
}

// GameTimeRemaining is the number of ticks left on the game clock.
func (s GameState) GameTimeRemaining() int {
	if s.Status == StatusSetup {
		return s.Rules.GameTimeLimit
	}
	return max(0, s.Rules.GameTimeLimit-(s.Clock-s.GameStartTime))
}

func (s GameState) Winner() (Player, bool) {
	if s.WinnerIndex < 0 || s.WinnerIndex >= len(s.Players) {
		return Player{}, false
	}
	return s.Players[s.WinnerIndex], true
}

// CardsInPlay counts every card held in a hand or on the pile.
func (s GameState) CardsInPlay() int {
	n := len(s.TablePile)
	for _, p := range s.Players {
		n += len(p.Hand)
	}
	return n
}

func (s GameState) playerIndex(playerID string) int {
	for i, p := range s.Players {
		if p.ID == playerID {
			return i
		}
	}
	return -1
}
