// Copyright (c) 2026 Yomira. All rights reserved.
// Author: tai.buivan.jp@gmail.com

package respond_test

import (
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/taibuivan/comicvoice/internal/platform/apperr"
	"github.com/taibuivan/comicvoice/internal/platform/respond"
)

/*
TestError_AppError verifies the error envelope carries code, message and details.
*/
func TestError_AppError(t *testing.T) {
	recorder := httptest.NewRecorder()
	request := httptest.NewRequest(http.MethodPut, "/api/v1/progress", nil)

	respond.Error(recorder, request, apperr.ReferenceNotFound("chapter_id", 9))

	assert.Equal(t, http.StatusNotFound, recorder.Code)

	var envelope respond.ErrorEnvelope
	require.NoError(t, json.Unmarshal(recorder.Body.Bytes(), &envelope))
	assert.Equal(t, apperr.CodeReferenceNotFound, envelope.Code)
	assert.Equal(t, "chapter_id 9 does not exist", envelope.Error)
	require.Len(t, envelope.Details, 1)
	assert.Equal(t, "chapter_id", envelope.Details[0].Field)
}

/*
TestError_UnknownError verifies plain errors are hidden behind a generic 500.
*/
func TestError_UnknownError(t *testing.T) {
	recorder := httptest.NewRecorder()
	request := httptest.NewRequest(http.MethodGet, "/", nil)

	respond.Error(recorder, request, errors.New("pq: relation does not exist"))

	assert.Equal(t, http.StatusInternalServerError, recorder.Code)
	assert.NotContains(t, recorder.Body.String(), "relation")
	assert.Contains(t, recorder.Body.String(), apperr.CodeInternal)
}

/*
TestOK_NullData verifies a nil payload is rendered as "data": null.
*/
func TestOK_NullData(t *testing.T) {
	recorder := httptest.NewRecorder()
	respond.OK(recorder, nil)

	assert.Equal(t, http.StatusOK, recorder.Code)
	assert.JSONEq(t, `{"data":null}`, recorder.Body.String())
}
