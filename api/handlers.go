package api

import (
	"errors"
	"io"
	"net/http"
	"strconv"
	"time"

	"github.com/bytedance/sonic"
	"github.com/labstack/echo/v4"
	log "github.com/sirupsen/logrus"

	"matrix-api/board"
	"matrix-api/domain"
)

// Register wires up all API routes on the provided Echo instance.
func Register(e *echo.Echo, svc BoardService, logger *log.Logger) {
	e.GET("/api/board", getBoard(svc, logger))
	e.GET("/api/completed", getCompleted(svc))
	e.POST("/api/tasks", createTask(svc))
	e.POST("/api/tasks/:id/toggle", toggleTask(svc))
	e.PATCH("/api/tasks/:id", editTask(svc))
	e.DELETE("/api/tasks/:id", deleteTask(svc))
	e.POST("/api/reorder", reorderBucket(svc))
	e.POST("/api/move", moveTask(svc))
	e.GET("/healthz", healthz())
}

func healthz() echo.HandlerFunc {
	return func(c echo.Context) error {
		return c.NoContent(http.StatusOK)
	}
}

func getBoard(svc BoardService, logger *log.Logger) echo.HandlerFunc {
	return func(c echo.Context) (err error) {
		ctx := c.Request().Context()
		metrics, spanCtx := newBoardRequestMetrics(ctx, logger)
		if spanCtx != nil {
			c.SetRequest(c.Request().WithContext(spanCtx))
			ctx = spanCtx
		}
		defer func() {
			metrics.Log(c.Response().Status, err)
		}()

		includeCompleted := false
		if raw := c.QueryParam("includeCompleted"); raw != "" {
			parsed, parseErr := strconv.ParseBool(raw)
			if parseErr != nil {
				metrics.SetErrorStage("invalid_include_completed")
				err = c.JSON(http.StatusBadRequest, errorResponse{Error: "invalid includeCompleted value"})
				return err
			}
			includeCompleted = parsed
		}
		metrics.SetIncludeCompleted(includeCompleted)

		fetchStart := time.Now()
		groups, fetchErr := svc.ListBoard(ctx, includeCompleted)
		metrics.ObserveFetch(time.Since(fetchStart))
		if fetchErr != nil {
			metrics.SetErrorStage("storage")
			c.Logger().Error(fetchErr)
			err = c.JSON(http.StatusInternalServerError, errorResponse{Error: "internal error"})
			return err
		}
		total := 0
		for _, tasks := range groups {
			total += len(tasks)
		}
		metrics.SetTasksReturned(total)

		encodeStart := time.Now()
		err = c.JSON(http.StatusOK, boardResponse{Buckets: groups})
		metrics.ObserveEncode(time.Since(encodeStart))
		if err != nil {
			metrics.SetErrorStage("encode_response")
		}
		return err
	}
}

func getCompleted(svc BoardService) echo.HandlerFunc {
	return func(c echo.Context) error {
		limit := 0
		if raw := c.QueryParam("limit"); raw != "" {
			parsed, err := strconv.Atoi(raw)
			if err != nil || parsed <= 0 {
				return c.JSON(http.StatusBadRequest, errorResponse{Error: "invalid limit"})
			}
			limit = parsed
		}
		tasks, err := svc.ListCompleted(c.Request().Context(), limit)
		if err != nil {
			return writeError(c, err)
		}
		return c.JSON(http.StatusOK, completedResponse{Tasks: tasks})
	}
}

func createTask(svc BoardService) echo.HandlerFunc {
	return func(c echo.Context) error {
		var body createTaskBody
		if err := decodeBody(c, &body); err != nil {
			return c.JSON(http.StatusBadRequest, errorResponse{Error: "invalid body"})
		}
		task, err := svc.Create(c.Request().Context(), body.Title, body.Bucket)
		if err != nil {
			return writeError(c, err)
		}
		return c.JSON(http.StatusCreated, task)
	}
}

func toggleTask(svc BoardService) echo.HandlerFunc {
	return func(c echo.Context) error {
		id, err := taskID(c)
		if err != nil {
			return c.JSON(http.StatusBadRequest, errorResponse{Error: "invalid task id"})
		}
		task, err := svc.Toggle(c.Request().Context(), id)
		if err != nil {
			return writeError(c, err)
		}
		return c.JSON(http.StatusOK, task)
	}
}

func editTask(svc BoardService) echo.HandlerFunc {
	return func(c echo.Context) error {
		id, err := taskID(c)
		if err != nil {
			return c.JSON(http.StatusBadRequest, errorResponse{Error: "invalid task id"})
		}
		var body editTaskBody
		if err := decodeBody(c, &body); err != nil {
			return c.JSON(http.StatusBadRequest, errorResponse{Error: "invalid body"})
		}
		if err := svc.EditTitle(c.Request().Context(), id, body.Title); err != nil {
			return writeError(c, err)
		}
		return c.NoContent(http.StatusNoContent)
	}
}

func deleteTask(svc BoardService) echo.HandlerFunc {
	return func(c echo.Context) error {
		id, err := taskID(c)
		if err != nil {
			return c.JSON(http.StatusBadRequest, errorResponse{Error: "invalid task id"})
		}
		if err := svc.Delete(c.Request().Context(), id); err != nil {
			return writeError(c, err)
		}
		return c.NoContent(http.StatusNoContent)
	}
}

func reorderBucket(svc BoardService) echo.HandlerFunc {
	return func(c echo.Context) error {
		var body reorderBody
		if err := decodeBody(c, &body); err != nil {
			return c.JSON(http.StatusBadRequest, errorResponse{Error: "invalid body"})
		}
		if err := svc.ReorderBucket(c.Request().Context(), body.Bucket, body.OrderedIds); err != nil {
			return writeError(c, err)
		}
		return c.NoContent(http.StatusNoContent)
	}
}

func moveTask(svc BoardService) echo.HandlerFunc {
	return func(c echo.Context) error {
		var body moveBody
		if err := decodeBody(c, &body); err != nil {
			return c.JSON(http.StatusBadRequest, errorResponse{Error: "invalid body"})
		}
		task, err := svc.MoveTask(c.Request().Context(), body.ID, body.Bucket, body.Index)
		if err != nil {
			return writeError(c, err)
		}
		return c.JSON(http.StatusOK, task)
	}
}

func taskID(c echo.Context) (int64, error) {
	return strconv.ParseInt(c.Param("id"), 10, 64)
}

func decodeBody(c echo.Context, v any) error {
	lr := io.LimitReader(c.Request().Body, requestBodyMaxSize)
	dec := sonic.ConfigStd.NewDecoder(lr)
	dec.DisallowUnknownFields()
	return dec.Decode(v)
}

func writeError(c echo.Context, err error) error {
	var ve board.ValidationError
	var ibe domain.InvalidBucketError
	switch {
	case errors.As(err, &ve):
		return c.JSON(http.StatusBadRequest, errorResponse{Error: ve.Error()})
	case errors.As(err, &ibe):
		return c.JSON(http.StatusBadRequest, errorResponse{Error: ibe.Error()})
	case errors.Is(err, board.ErrTaskNotFound):
		return c.JSON(http.StatusNotFound, errorResponse{Error: board.ErrTaskNotFound.Error()})
	}
	c.Logger().Error(err)
	return c.JSON(http.StatusInternalServerError, errorResponse{Error: "internal error"})
}
