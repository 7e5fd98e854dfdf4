package web

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"math"
	"net/http"

	"github.com/samber/lo"

	"go.viam.com/armtraj/components/arm/dynamics"
	"go.viam.com/armtraj/motionplan/minjerk"
	"go.viam.com/armtraj/motionplan/quintic"
	"go.viam.com/armtraj/services/trajectory"
	"go.viam.com/armtraj/utils/matrix"
)

const (
	// responseJoints is the minimum width of every joint vector in a response. Shorter arms are
	// padded with zeros so clients built for six axis arms keep working.
	responseJoints = 6

	// maxSamples bounds the size of a single response.
	maxSamples   = 100000
	maxBodyBytes = 1 << 20
)

type planRequest struct {
	QTarget     []float64 `json:"q_target"`
	T           *float64  `json:"T,omitempty"`
	DT          *float64  `json:"dt,omitempty"`
	Diagnostics bool      `json:"diagnostics,omitempty"`
}

type trajectoryPoint struct {
	T float64   `json:"t"`
	Q []float64 `json:"q"`
}

type sampleJSON struct {
	T            float64   `json:"t"`
	Q            []float64 `json:"q"`
	DQ           []float64 `json:"dq"`
	DDQ          []float64 `json:"ddq"`
	U            []float64 `json:"u"`
	Lambda1      []float64 `json:"lambda1"`
	Lambda2      []float64 `json:"lambda2"`
	Lambda3      []float64 `json:"lambda3"`
	AccumulatedJ float64   `json:"J_acc"`
}

type planResponse struct {
	DT         float64           `json:"dt"`
	T          float64           `json:"T"`
	Unit       string            `json:"unit"`
	Session    string            `json:"session"`
	Trajectory []trajectoryPoint `json:"trajectory"`
	Samples    []sampleJSON      `json:"samples,omitempty"`
}

type stateResponse struct {
	Session string    `json:"session"`
	Q       []float64 `json:"q"`
	DQ      []float64 `json:"dq"`
}

type torqueRequest struct {
	Tau []float64 `json:"tau"`
}

type errorResponse struct {
	Error string `json:"error"`
}

func (s *Server) handlePlan(w http.ResponseWriter, r *http.Request) {
	var req planRequest
	if err := decodeBody(r, &req); err != nil {
		var typeErr *json.UnmarshalTypeError
		if errors.As(err, &typeErr) && typeErr.Field == "q_target" {
			s.writeError(w, http.StatusBadRequest, "Not enough parameters: q_target (array)")
			return
		}
		s.writeError(w, http.StatusBadRequest, "Bad JSON body")
		return
	}
	if req.QTarget == nil {
		s.writeError(w, http.StatusBadRequest, "Not enough parameters: q_target (array)")
		return
	}
	dof := s.svc.DoF()
	if len(req.QTarget) < dof {
		s.writeError(w, http.StatusBadRequest, fmt.Sprintf("q_target must have %d values", dof))
		return
	}

	opts := &trajectory.PlanOptions{}
	if req.T != nil {
		if !(*req.T > 0) || math.IsInf(*req.T, 1) {
			s.writeError(w, http.StatusBadRequest, "T must be a positive number of seconds")
			return
		}
		opts.Duration = *req.T
	}
	if req.DT != nil {
		if !(*req.DT > 0) {
			s.writeError(w, http.StatusBadRequest, "dt must be a positive number of seconds")
			return
		}
		opts.SampleInterval = *req.DT
	}
	duration, dt := opts.Duration, opts.SampleInterval
	defaults := s.svc.Defaults()
	if duration == 0 {
		duration = defaults.Duration
	}
	if dt == 0 {
		dt = defaults.SampleInterval
	}
	if minjerk.SampleCount(duration, dt) > maxSamples {
		s.writeError(w, http.StatusBadRequest, fmt.Sprintf("T/dt asks for more than %d samples", maxSamples))
		return
	}

	plan, err := s.svc.PlanTo(r.Context(), req.QTarget[:dof], opts)
	if err != nil {
		s.writeError(w, statusForPlanError(err), err.Error())
		return
	}

	resp := planResponse{
		DT:      plan.SampleInterval,
		T:       plan.Duration,
		Unit:    "rad",
		Session: plan.SessionID.String(),
		Trajectory: lo.Map(plan.Samples, func(sample minjerk.Sample, _ int) trajectoryPoint {
			return trajectoryPoint{T: sample.T, Q: padJoints(sample.Position)}
		}),
	}
	if req.Diagnostics {
		resp.Samples = lo.Map(plan.Samples, func(sample minjerk.Sample, _ int) sampleJSON {
			return sampleJSON{
				T:            sample.T,
				Q:            padJoints(sample.Position),
				DQ:           padJoints(sample.Velocity),
				DDQ:          padJoints(sample.Acceleration),
				U:            padJoints(sample.Jerk),
				Lambda1:      padJoints(sample.Lambda1),
				Lambda2:      padJoints(sample.Lambda2),
				Lambda3:      padJoints(sample.Lambda3),
				AccumulatedJ: sample.Cost,
			}
		})
	}
	s.writeJSON(w, http.StatusOK, resp)
}

func (s *Server) handleState(w http.ResponseWriter, r *http.Request) {
	st, err := s.svc.State(r.Context())
	if err != nil {
		s.writeError(w, http.StatusInternalServerError, err.Error())
		return
	}
	s.writeJSON(w, http.StatusOK, stateResponse{
		Session: s.svc.ID().String(),
		Q:       padJoints(st.Position),
		DQ:      padJoints(st.Velocity),
	})
}

func (s *Server) handleReset(w http.ResponseWriter, r *http.Request) {
	if err := s.svc.Reset(r.Context()); err != nil {
		s.writeError(w, http.StatusInternalServerError, err.Error())
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (s *Server) handleTorque(w http.ResponseWriter, r *http.Request) {
	var req torqueRequest
	if err := decodeBody(r, &req); err != nil {
		s.writeError(w, http.StatusBadRequest, "Bad JSON body")
		return
	}
	if err := s.svc.SetTorque(r.Context(), req.Tau); err != nil {
		s.writeError(w, statusForPlanError(err), err.Error())
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func decodeBody(r *http.Request, to interface{}) error {
	return json.NewDecoder(io.LimitReader(r.Body, maxBodyBytes)).Decode(to)
}

func statusForPlanError(err error) int {
	var (
		planDim  *minjerk.DimensionMismatchError
		stateDim *dynamics.DimensionMismatchError
		tooSmall *quintic.DurationTooSmallError
		singular *matrix.SingularSystemError
	)
	switch {
	case errors.As(err, &planDim), errors.As(err, &stateDim):
		return http.StatusBadRequest
	case errors.As(err, &tooSmall), errors.As(err, &singular):
		return http.StatusUnprocessableEntity
	default:
		return http.StatusInternalServerError
	}
}

func (s *Server) writeJSON(w http.ResponseWriter, status int, v interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		s.logger.Warnw("failed to write response", "error", err)
	}
}

func (s *Server) writeError(w http.ResponseWriter, status int, msg string) {
	s.logger.Debugw("rejecting request", "status", status, "error", msg)
	s.writeJSON(w, status, errorResponse{Error: msg})
}

// padJoints returns q extended with zeros to at least responseJoints entries.
func padJoints(q []float64) []float64 {
	if len(q) >= responseJoints {
		return q
	}
	return append(append(make([]float64, 0, responseJoints), q...), lo.Times(responseJoints-len(q), func(int) float64 {
		return 0
	})...)
}
