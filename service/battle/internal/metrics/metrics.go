package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"

	"MonsterTCG/service/battle/internal/battle"
)

// Esiti usati come label "result".
const (
	ResultDecided = "decided"
	ResultDraw    = "draw"
)

// Motivi di rifiuto usati come label "reason".
const (
	ReasonInProgress = "in_progress"
	ReasonQueued     = "already_queued"
	ReasonMalformed  = "malformed"
	ReasonCancelled  = "cancelled"
)

// RoundBuckets copre battaglie brevi e quelle che arrivano al limite di round.
var RoundBuckets = []float64{1, 2, 5, 10, 20, 40, 60, 80, float64(battle.MaxRounds)}

// Battle raccoglie le metriche di battle-svc.
type Battle struct {
	BattlesTotal  *prometheus.CounterVec
	Rounds        *prometheus.HistogramVec
	LobbyWaiting  *prometheus.GaugeVec
	RejectedTotal *prometheus.CounterVec
}

// New registra le metriche sul registerer indicato.
func New(registerer prometheus.Registerer) *Battle {
	factory := promauto.With(registerer)
	return &Battle{
		BattlesTotal: factory.NewCounterVec(prometheus.CounterOpts{
			Namespace: "mtcg",
			Name:      "battle_total",
			Help:      "Battaglie concluse per modalita' ed esito.",
		}, []string{"mode", "result"}),
		Rounds: factory.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: "mtcg",
			Name:      "battle_rounds",
			Help:      "Round giocati per battaglia.",
			Buckets:   RoundBuckets,
		}, []string{"mode"}),
		LobbyWaiting: factory.NewGaugeVec(prometheus.GaugeOpts{
			Namespace: "mtcg",
			Name:      "lobby_waiting",
			Help:      "Giocatori in attesa di un avversario.",
		}, []string{"mode"}),
		RejectedTotal: factory.NewCounterVec(prometheus.CounterOpts{
			Namespace: "mtcg",
			Name:      "battle_rejected_total",
			Help:      "Richieste di battaglia rifiutate.",
		}, []string{"mode", "reason"}),
	}
}

// ObserveLedger registra esito e durata; va chiamato una volta per battaglia.
func (m *Battle) ObserveLedger(mode string, ledger *battle.Ledger) {
	if m == nil {
		return
	}
	result := ResultDecided
	if ledger.Draw {
		result = ResultDraw
	}
	m.BattlesTotal.WithLabelValues(mode, result).Inc()
	m.Rounds.WithLabelValues(mode).Observe(float64(ledger.Rounds))
}

// QueueObserver aggiorna il gauge della lobby di una modalita'.
func (m *Battle) QueueObserver(mode string) func(int) {
	return func(waiting int) {
		if m == nil {
			return
		}
		m.LobbyWaiting.WithLabelValues(mode).Set(float64(waiting))
	}
}

func (m *Battle) Reject(mode, reason string) {
	if m == nil {
		return
	}
	m.RejectedTotal.WithLabelValues(mode, reason).Inc()
}
