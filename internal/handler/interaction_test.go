package handler_test

import (
	"encoding/json"
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestHandleInteractionCreate(t *testing.T) {
	t.Run("requires auth", func(t *testing.T) {
		api := newTestAPI(t)

		rr := api.do(t, http.MethodPost, "/interactions",
			`{"course_id":1070968,"interaction_type":"view"}`, "")

		assert.Equal(t, http.StatusUnauthorized, rr.Code)
	})

	t.Run("logs an interaction", func(t *testing.T) {
		api := newTestAPI(t)
		token, userID := api.registerAndLogin(t, "alice")

		rr := api.do(t, http.MethodPost, "/interactions",
			`{"course_id":1070968,"interaction_type":"enrolled"}`, token)

		assert.Equal(t, http.StatusCreated, rr.Code)
		env := decodeEnvelope(t, rr)
		assert.Equal(t, "Interaction logged successfully", env.Message)

		var interaction map[string]any
		assert.NoError(t, json.Unmarshal(env.Data, &interaction))
		assert.NotEmpty(t, interaction["id"])
		assert.Equal(t, userID, interaction["user_id"])
		assert.Equal(t, float64(1070968), interaction["course_id"])
		assert.Equal(t, "enrolled", interaction["interaction_type"])
	})

	t.Run("appears in the profile without user_id", func(t *testing.T) {
		api := newTestAPI(t)
		token, _ := api.registerAndLogin(t, "bob")

		rr := api.do(t, http.MethodPost, "/interactions",
			`{"course_id":100,"interaction_type":"view"}`, token)
		assert.Equal(t, http.StatusCreated, rr.Code)

		rr = api.do(t, http.MethodGet, "/me", "", token)
		assert.Equal(t, http.StatusOK, rr.Code)

		var data struct {
			Interactions []map[string]any `json:"interactions"`
		}
		assert.NoError(t, json.Unmarshal(decodeEnvelope(t, rr).Data, &data))
		assert.Len(t, data.Interactions, 1)
		assert.Equal(t, float64(100), data.Interactions[0]["course_id"])
		assert.NotContains(t, data.Interactions[0], "user_id")
	})

	t.Run("missing fields rejected", func(t *testing.T) {
		api := newTestAPI(t)
		token, _ := api.registerAndLogin(t, "carol")

		rr := api.do(t, http.MethodPost, "/interactions", `{"course_id":100}`, token)

		assert.Equal(t, http.StatusBadRequest, rr.Code)
		assert.Contains(t, decodeEnvelope(t, rr).Message, "Invalid payload")
	})

	t.Run("missing body", func(t *testing.T) {
		api := newTestAPI(t)
		token, _ := api.registerAndLogin(t, "dave")

		rr := api.do(t, http.MethodPost, "/interactions", "", token)

		assert.Equal(t, http.StatusBadRequest, rr.Code)
		assert.Equal(t, "No data provided", decodeEnvelope(t, rr).Message)
	})
}

func TestHandleInteractionDelete(t *testing.T) {
	t.Run("requires auth", func(t *testing.T) {
		api := newTestAPI(t)

		rr := api.do(t, http.MethodDelete, "/interactions/some-id", "", "")

		assert.Equal(t, http.StatusUnauthorized, rr.Code)
	})

	t.Run("deletes a logged interaction", func(t *testing.T) {
		api := newTestAPI(t)
		token, _ := api.registerAndLogin(t, "erin")

		rr := api.do(t, http.MethodPost, "/interactions",
			`{"course_id":200,"interaction_type":"buy"}`, token)
		assert.Equal(t, http.StatusCreated, rr.Code)

		var interaction struct {
			ID string `json:"id"`
		}
		assert.NoError(t, json.Unmarshal(decodeEnvelope(t, rr).Data, &interaction))

		rr = api.do(t, http.MethodDelete, "/interactions/"+interaction.ID, "", token)
		assert.Equal(t, http.StatusOK, rr.Code)
		assert.Equal(t, "Interaction deleted successfully", decodeEnvelope(t, rr).Message)

		rr = api.do(t, http.MethodGet, "/me", "", token)
		var data struct {
			Interactions []map[string]any `json:"interactions"`
		}
		assert.NoError(t, json.Unmarshal(decodeEnvelope(t, rr).Data, &data))
		assert.Empty(t, data.Interactions)
	})

	t.Run("unknown id still reports success", func(t *testing.T) {
		// the delete is idempotent and, deliberately, unscoped: see the
		// authorization note in DESIGN.md
		api := newTestAPI(t)
		token, _ := api.registerAndLogin(t, "frank")

		rr := api.do(t, http.MethodDelete, "/interactions/never-existed", "", token)

		assert.Equal(t, http.StatusOK, rr.Code)
		env := decodeEnvelope(t, rr)
		assert.Equal(t, "success", env.Status)
		assert.Equal(t, "Interaction deleted successfully", env.Message)
	})
}
