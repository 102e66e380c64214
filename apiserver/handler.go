// Copyright 2026 Navdeep Gill
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
// http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.

package apiserver

import (
	"errors"
	"fmt"
	"net/http"
	"sort"

	"github.com/czcorpus/cnc-gokit/uniresp"
	"github.com/dgraph-io/badger/v4"
	"github.com/gin-gonic/gin"
	"github.com/navdeep-G/the-r-in-spark/dataset"
	"github.com/navdeep-G/the-r-in-spark/scoring"
	"github.com/navdeep-G/the-r-in-spark/stage"
)

func (api *apiServer) handleVersion(ctx *gin.Context) {
	uniresp.WriteJSONResponse(ctx.Writer, api.version)
}

type modelInfo struct {
	Name         string   `json:"name"`
	InputColumns []string `json:"inputColumns"`
}

func (api *apiServer) handleListModels(ctx *gin.Context) {
	ans := make([]modelInfo, 0, len(api.models))
	for name, rt := range api.models {
		ans = append(ans, modelInfo{Name: name, InputColumns: rt.InputColumns()})
	}
	sort.Slice(ans, func(i, j int) bool { return ans[i].Name < ans[j].Name })
	uniresp.WriteJSONResponse(ctx.Writer, map[string]any{"models": ans})
}

func (api *apiServer) handleModelInfo(ctx *gin.Context) {
	rt, ok := api.models[ctx.Param("name")]
	if !ok {
		uniresp.RespondWithErrorJSON(
			ctx, fmt.Errorf("model not found"), http.StatusNotFound,
		)
		return
	}
	uniresp.WriteJSONResponse(
		ctx.Writer,
		modelInfo{Name: ctx.Param("name"), InputColumns: rt.InputColumns()},
	)
}

func (api *apiServer) handlePredict(ctx *gin.Context) {
	rt, ok := api.models[ctx.Param("name")]
	if !ok {
		uniresp.RespondWithErrorJSON(
			ctx, fmt.Errorf("model not found"), http.StatusNotFound,
		)
		return
	}

	var rec scoring.Record
	if err := ctx.BindJSON(&rec); err != nil {
		uniresp.RespondWithErrorJSON(
			ctx, fmt.Errorf("invalid request: %w", err), http.StatusBadRequest,
		)
		return
	}

	ans, err := rt.Predict(ctx.Request.Context(), rec)
	if err != nil {
		uniresp.RespondWithErrorJSON(ctx, err, predictErrStatus(err))
		return
	}
	uniresp.WriteJSONResponse(ctx.Writer, ans)
}

// predictErrStatus maps scoring failures onto HTTP status codes:
// problems with the submitted record are the client's fault, anything
// else is ours.
func predictErrStatus(err error) int {
	var schemaErr *dataset.SchemaError
	var unseenErr *stage.UnseenCategoryError
	switch {
	case errors.As(err, &schemaErr):
		return http.StatusUnprocessableEntity
	case errors.As(err, &unseenErr):
		return http.StatusUnprocessableEntity
	default:
		return http.StatusInternalServerError
	}
}

func (api *apiServer) handleListRuns(ctx *gin.Context) {
	if api.runs == nil {
		uniresp.RespondWithErrorJSON(
			ctx, fmt.Errorf("run store not configured"), http.StatusNotFound,
		)
		return
	}
	runs, err := api.runs.ListRuns()
	if err != nil {
		uniresp.RespondWithErrorJSON(ctx, err, http.StatusInternalServerError)
		return
	}
	uniresp.WriteJSONResponse(ctx.Writer, map[string]any{"runs": runs})
}

func (api *apiServer) handleGetRun(ctx *gin.Context) {
	if api.runs == nil {
		uniresp.RespondWithErrorJSON(
			ctx, fmt.Errorf("run store not configured"), http.StatusNotFound,
		)
		return
	}
	run, err := api.runs.GetRun(ctx.Param("id"))
	if err != nil {
		if errors.Is(err, badger.ErrKeyNotFound) {
			uniresp.RespondWithErrorJSON(
				ctx, fmt.Errorf("run not found"), http.StatusNotFound,
			)
			return
		}
		uniresp.RespondWithErrorJSON(ctx, err, http.StatusInternalServerError)
		return
	}
	uniresp.WriteJSONResponse(ctx.Writer, run)
}
