package csvimport

import (
	"strings"
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseOrders(t *testing.T) {
	input := strings.Join([]string{
		`Codigo Romaneio,observacoes Romaneio,N° Pedido,Cliente,Cod.Produto,Descricao,Qtd Pedida,Qtd Vinculada no Romaneio,Metodo_de_entrega,Requisicao de Loja do grupo ?,Municipio,UF,localEntregaDifEnderecoDestinatario,Municipio_Entrega,UF_Entrega`,
		`ROM-1,CARGA NORTE,PED-10,ACME LTDA,PA-100,Prateleira,"3,5",2,Entrega pelo grupo Só Aço,Não,TERESINA,PI,0,,`,
		`,,PED-11,BETA SA,PA-200,Armario,10,0,Retira,Sim,TIMON,MA,1,CAXIAS,MA`,
	}, "\n")

	lines, err := ParseOrders(strings.NewReader(input))
	require.NoError(t, err)
	require.Len(t, lines, 2)

	first := lines[0]
	assert.Equal(t, "ROM-1", first.ManifestCode)
	assert.Equal(t, "CARGA NORTE", first.ManifestNotes)
	assert.Equal(t, "PED-10", first.OrderNumber)
	assert.Equal(t, "PA-100", first.ProductCode)
	assert.True(t, first.QtyOrdered.Equal(decimal.RequireFromString("3.5")))
	assert.True(t, first.QtyLinked.Equal(decimal.NewFromInt(2)))
	assert.False(t, first.StoreRequisition)
	assert.Equal(t, "TERESINA", first.City)
	assert.Equal(t, 0, first.AltDelivery)

	second := lines[1]
	assert.Empty(t, second.ManifestCode)
	assert.True(t, second.StoreRequisition)
	assert.Equal(t, 1, second.AltDelivery)
	assert.Equal(t, "CAXIAS", second.DeliveryCity)
	assert.Equal(t, "MA", second.DeliveryState)
}

func TestParseOrdersHeaderAliases(t *testing.T) {
	input := strings.Join([]string{
		`Cod. Romaneio;Observações;Pedido;Codigo Produto;Qtd_Pedida`,
		`ROM-9;ROTA SUL;PED-20;PA-300;4`,
	}, "\n")

	lines, err := ParseOrders(strings.NewReader(input))
	require.NoError(t, err)
	require.Len(t, lines, 1)

	assert.Equal(t, "ROM-9", lines[0].ManifestCode)
	assert.Equal(t, "ROTA SUL", lines[0].ManifestNotes)
	assert.Equal(t, "PED-20", lines[0].OrderNumber)
	assert.Equal(t, "PA-300", lines[0].ProductCode)
	assert.True(t, lines[0].QtyOrdered.Equal(decimal.NewFromInt(4)))
}

func TestParseOrdersRejectsMissingProductColumn(t *testing.T) {
	input := "Cliente,Qtd Pedida\nACME,3\n"

	_, err := ParseOrders(strings.NewReader(input))
	require.Error(t, err)
	assert.Contains(t, err.Error(), "product code")
}

func TestParseOrdersReportsRowNumber(t *testing.T) {
	input := strings.Join([]string{
		`Cod.Produto,Qtd Pedida`,
		`PA-100,3`,
		`PA-200,abc`,
	}, "\n")

	_, err := ParseOrders(strings.NewReader(input))
	require.Error(t, err)
	assert.Contains(t, err.Error(), "row 3")
}

func TestParseStock(t *testing.T) {
	input := strings.Join([]string{
		`idProduto,Codigo,idTipoProduto,SetorEstoquePadrao,Descricao,setorEstoque,saldoSetorFinal`,
		`101.0,PA-100,3.0,EXPEDICAO,Prateleira,EXPEDICAO,"12,75"`,
		`102,PA-200,3,EXPEDICAO,Armario,FABRICA,-4`,
	}, "\n")

	items, err := ParseStock(strings.NewReader(input))
	require.NoError(t, err)
	require.Len(t, items, 2)

	assert.Equal(t, "101", items[0].ProductID)
	assert.Equal(t, "PA-100", items[0].Code)
	assert.Equal(t, "3", items[0].ProductTypeID)
	assert.True(t, items[0].FinalBalance.Equal(decimal.RequireFromString("12.75")))
	assert.True(t, items[1].FinalBalance.Equal(decimal.NewFromInt(-4)))
}

func TestParseDecimal(t *testing.T) {
	tests := []struct {
		input string
		want  string
	}{
		{"", "0"},
		{"10", "10"},
		{"3,5", "3.5"},
		{"1.234,56", "1234.56"},
		{"-2,25", "-2.25"},
		{" 7 ", "7"},
	}

	for _, tt := range tests {
		got, err := parseDecimal(tt.input)
		require.NoError(t, err, "input %q", tt.input)
		assert.True(t, got.Equal(decimal.RequireFromString(tt.want)), "input %q: got %s", tt.input, got)
	}

	_, err := parseDecimal("abc")
	assert.Error(t, err)
}

func TestSemicolonDelimitedExport(t *testing.T) {
	lines, err := ParseOrders(strings.NewReader("Cod.Produto;Qtd Pedida\nPA-1;2\n"))
	require.NoError(t, err)
	require.Len(t, lines, 1)
	assert.Equal(t, "PA-1", lines[0].ProductCode)
	assert.True(t, lines[0].QtyOrdered.Equal(decimal.NewFromInt(2)))
}
