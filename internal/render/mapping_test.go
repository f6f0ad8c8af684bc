package render_test

import (
	"strings"
	"testing"

	"github.com/giftflow/certgen-backend/internal/render"
	"github.com/stretchr/testify/require"
)

func Test_ParseMapping_When_Valid_Then_Returns_All_Fields(t *testing.T) {
	raw := []byte(`{
		"first_name": {"x": 200, "y": 320, "fontSize": 24, "color": "#000000"},
		"message": {"x": 100, "y": 510, "fontSize": 14, "color": "#333333", "maxWidth": 400}
	}`)

	mapping, err := render.ParseMapping(raw)
	require.NoError(t, err)
	require.Len(t, mapping, 2)
	require.Equal(t, 200.0, mapping["first_name"].X)
	require.Equal(t, 400.0, mapping["message"].MaxWidth)
}

func Test_ParseMapping_When_Unknown_Field_Name_Then_Errors(t *testing.T) {
	_, err := render.ParseMapping([]byte(`{"signature": {"x": 1, "y": 2}}`))
	require.Error(t, err)
	require.Contains(t, err.Error(), "signature")
}

func Test_ParseMapping_When_Unknown_Style_Key_Then_Errors(t *testing.T) {
	_, err := render.ParseMapping([]byte(`{"first_name": {"x": 1, "rotation": 45}}`))
	require.Error(t, err)
}

func Test_ParseMapping_When_Malformed_JSON_Then_Errors(t *testing.T) {
	_, err := render.ParseMapping([]byte(`{"first_name":`))
	require.Error(t, err)
}

func Test_ParseMapping_When_Empty_Object_Then_Returns_Empty_Mapping(t *testing.T) {
	mapping, err := render.ParseMapping([]byte(`{}`))
	require.NoError(t, err)
	require.Empty(t, mapping)
}

func Test_ParseMapping_When_No_Bytes_Then_Errors(t *testing.T) {
	_, err := render.ParseMapping(nil)
	require.Error(t, err)
}

func Test_DefaultMapping_Positions_Every_Known_Field(t *testing.T) {
	mapping := render.DefaultMapping(595.28, 841.89)
	require.Len(t, mapping, 8)
	for _, name := range []string{
		"first_name", "last_name", "amount", "issue_date",
		"expires_at", "certificate_code", "message", "from_name",
	} {
		require.Contains(t, mapping, name)
	}
	require.Equal(t, 595.28/2-100, mapping["first_name"].X)
	require.Equal(t, 400.0, mapping["message"].MaxWidth)
}

func Test_ParseHexColor_When_Valid_Then_Returns_Components(t *testing.T) {
	r, g, b, ok := render.ParseHexColor("#ff8000")
	require.True(t, ok)
	require.Equal(t, 255, r)
	require.Equal(t, 128, g)
	require.Equal(t, 0, b)
}

func Test_ParseHexColor_When_No_Hash_Prefix_Then_Still_Parses(t *testing.T) {
	r, g, b, ok := render.ParseHexColor("336699")
	require.True(t, ok)
	require.Equal(t, 0x33, r)
	require.Equal(t, 0x66, g)
	require.Equal(t, 0x99, b)
}

func Test_ParseHexColor_When_Invalid_Then_Not_Ok(t *testing.T) {
	for _, color := range []string{"", "#fff", "#gggggg", "#1234567", "red"} {
		_, _, _, ok := render.ParseHexColor(color)
		require.False(t, ok, "color %q", color)
	}
}

func Test_WrapText_When_Text_Fits_Then_Single_Line(t *testing.T) {
	lines := render.WrapText("short message", 400, 14)
	require.Equal(t, []string{"short message"}, lines)
}

func Test_WrapText_When_Text_Exceeds_Width_Then_Splits_On_Words(t *testing.T) {
	text := strings.Repeat("word ", 40)
	lines := render.WrapText(strings.TrimSpace(text), 200, 14)
	require.Greater(t, len(lines), 1)
	// 200 / (14 * 0.6) = 23 characters per line, joining spaces not counted
	for _, line := range lines {
		require.LessOrEqual(t, len([]rune(strings.ReplaceAll(line, " ", ""))), 23)
	}
	require.Equal(t, strings.TrimSpace(text), strings.Join(lines, " "))
}

func Test_WrapText_When_Word_Longer_Than_Budget_Then_Own_Line(t *testing.T) {
	lines := render.WrapText("tiny "+strings.Repeat("x", 40)+" tail", 100, 14)
	require.Contains(t, lines, strings.Repeat("x", 40))
}

func Test_WrapText_When_Empty_Then_No_Lines(t *testing.T) {
	require.Empty(t, render.WrapText("", 400, 14))
}
