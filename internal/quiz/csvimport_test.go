package quiz_test

import (
	"context"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mathathon/mathathon-server/internal/quiz"
)

func TestImportCSVFullSchema(t *testing.T) {
	ctx := context.Background()
	store := newTestStore(t)

	csvData := strings.Join([]string{
		"module,type,question,answer,difficulty,option_a,option_b,option_c,option_d,correct_option",
		"Trigonometry,revision,State the cosine rule.,a²=b²+c²-2bc·cosA,easy,,,,,",
		"Trigonometry,mock,cos(0)?,,medium,0,1,-1,undefined,B",
		"Trigonometry,mock,missing options,,medium,,,,,",
		",revision,,,,,,,,",
	}, "\n")

	res, err := quiz.ImportCSV(ctx, store, strings.NewReader(csvData))
	require.NoError(t, err)
	assert.Equal(t, 2, res.Imported)
	assert.Equal(t, 2, res.Skipped)

	modules, err := store.ListModules(ctx)
	require.NoError(t, err)
	require.Len(t, modules, 1)
	assert.Equal(t, "trigonometry", modules[0].Slug)

	revisions, err := store.ListQuestions(ctx, modules[0].ID, quiz.TypeRevision)
	require.NoError(t, err)
	require.Len(t, revisions, 1)
	assert.Nil(t, revisions[0].OptionA)
	require.NotNil(t, revisions[0].AnswerText)
	assert.Equal(t, "easy", revisions[0].Difficulty)

	mocks, err := store.ListQuestions(ctx, modules[0].ID, quiz.TypeMock)
	require.NoError(t, err)
	require.Len(t, mocks, 1)
	require.NotNil(t, mocks[0].CorrectOption)
	assert.Equal(t, "B", *mocks[0].CorrectOption)
}

func TestImportCSVSimplifiedSchema(t *testing.T) {
	ctx := context.Background()
	store := newTestStore(t)

	csvData := strings.Join([]string{
		"Serial Number,Question,Answer",
		"1,sin²θ + cos²θ = ?,1",
		"2,tanθ = ?,sinθ/cosθ",
		"3,,blank question",
	}, "\n")

	res, err := quiz.ImportCSV(ctx, store, strings.NewReader(csvData))
	require.NoError(t, err)
	assert.Equal(t, 2, res.Imported)
	assert.Equal(t, 1, res.Skipped)

	mod, err := store.GetModuleBySlug(ctx, "trigonometry")
	require.NoError(t, err)

	questions, err := store.ListQuestions(ctx, mod.ID, quiz.TypeRevision)
	require.NoError(t, err)
	assert.Len(t, questions, 2)
	assert.Equal(t, "medium", questions[0].Difficulty)
}

func TestImportCSVBadInput(t *testing.T) {
	ctx := context.Background()
	store := newTestStore(t)

	_, err := quiz.ImportCSV(ctx, store, strings.NewReader(""))
	assert.ErrorIs(t, err, quiz.ErrBadCSV)
}
