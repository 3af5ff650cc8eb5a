// Package csvimport parses the ERP spreadsheet exports (saved as CSV) into
// domain records. The exports come from different report screens, so column
// names vary between runs; each field binds through a list of known header
// aliases matched after accent stripping and uppercasing.
package csvimport

import (
	"bufio"
	"encoding/csv"
	"fmt"
	"io"
	"strconv"
	"strings"

	"github.com/shopspring/decimal"

	"github.com/soaco-industrial/projection-service/internal/domain"
)

var orderAliases = map[string][]string{
	"manifestCode":  {"Codigo Romaneio", "Codigo_Romaneio", "Cod. Romaneio"},
	"manifestNotes": {"observacoes Romaneio", "observacoes_Romaneio", "Observações"},
	"manifestDate":  {"dataEmissao Romaneio", "dataEmissao_Romaneio"},
	"orderNumber":   {"N° Pedido", "N_Pedido", "Pedido"},
	"customer":      {"Cliente"},
	"orderDate":     {"Data Emissao Pedido", "Data_Emissao_Pedido"},
	"productCode":   {"Cod.Produto", "Cod_Produto", "Codigo Produto"},
	"description":   {"descricao", "Descricao"},
	"unit":          {"U.M", "UM"},
	"qtyOrdered":    {"Qtd Pedida", "Qtd_Pedida"},
	"qtyLinked":     {"Qtd Vinculada no Romaneio", "Qtd_Vinculada_no_Romaneio"},
	"productType":   {"Tipo de produto do item de pedido de venda", "Tipo Produto"},
	"unitPrice":     {"Preço Unitario", "Preco_Unitario"},
	"deliveryDate":  {"Data de Entrega", "Data_de_Entrega"},
	"city":          {"Municipio"},
	"state":         {"UF"},
	"method":        {"Metodo_de_entrega", "Método de entrega", "Metodo Entrega"},
	"storeReq":      {"Requisicao de Loja do grupo ?", "Requisicao de Loja do grupo"},
	"altDelivery":   {"localEntregaDifEnderecoDestinatario", "Local Entrega Dif"},
	"customerCity":  {"Municipio_Cliente", "Municipio Cliente"},
	"customerState": {"UF_Cliente", "UF Cliente"},
	"deliveryCity":  {"Municipio_Entrega", "Municipio Entrega"},
	"deliveryState": {"UF_Entrega", "UF Entrega"},
	"address":       {"Endereco", "Endereço"},
}

var stockAliases = map[string][]string{
	"productId":     {"idProduto"},
	"code":          {"Codigo", "codigo"},
	"productTypeId": {"idTipoProduto"},
	"defaultSector": {"SetorEstoquePadrao"},
	"description":   {"Descricao", "descricao"},
	"sector":        {"setorEstoque"},
	"finalBalance":  {"saldoSetorFinal"},
}

// ParseOrders reads an order export and maps each data row to an OrderLine.
func ParseOrders(r io.Reader) ([]domain.OrderLine, error) {
	records, err := readAll(r)
	if err != nil {
		return nil, fmt.Errorf("read orders: %w", err)
	}
	if len(records) == 0 {
		return nil, fmt.Errorf("orders file is empty")
	}

	cols := resolveHeader(records[0], orderAliases)
	if cols["productCode"] < 0 {
		return nil, fmt.Errorf("orders file is missing a product code column")
	}

	lines := make([]domain.OrderLine, 0, len(records)-1)
	for i, record := range records[1:] {
		line, err := parseOrderRow(record, cols)
		if err != nil {
			return nil, fmt.Errorf("row %d: %w", i+2, err)
		}
		lines = append(lines, line)
	}
	return lines, nil
}

// ParseStock reads a stock balance export and maps each data row to a
// StockItem.
func ParseStock(r io.Reader) ([]domain.StockItem, error) {
	records, err := readAll(r)
	if err != nil {
		return nil, fmt.Errorf("read stock: %w", err)
	}
	if len(records) == 0 {
		return nil, fmt.Errorf("stock file is empty")
	}

	cols := resolveHeader(records[0], stockAliases)
	if cols["code"] < 0 {
		return nil, fmt.Errorf("stock file is missing a product code column")
	}

	items := make([]domain.StockItem, 0, len(records)-1)
	for i, record := range records[1:] {
		balance, err := parseDecimal(cell(record, cols["finalBalance"]))
		if err != nil {
			return nil, fmt.Errorf("row %d: invalid balance: %w", i+2, err)
		}
		items = append(items, domain.StockItem{
			ProductID:     parseIdentifier(cell(record, cols["productId"])),
			Code:          cell(record, cols["code"]),
			ProductTypeID: parseIdentifier(cell(record, cols["productTypeId"])),
			DefaultSector: cell(record, cols["defaultSector"]),
			Description:   cell(record, cols["description"]),
			Sector:        cell(record, cols["sector"]),
			FinalBalance:  balance,
		})
	}
	return items, nil
}

func parseOrderRow(record []string, cols map[string]int) (domain.OrderLine, error) {
	qtyOrdered, err := parseDecimal(cell(record, cols["qtyOrdered"]))
	if err != nil {
		return domain.OrderLine{}, fmt.Errorf("invalid ordered quantity: %w", err)
	}
	qtyLinked, err := parseDecimal(cell(record, cols["qtyLinked"]))
	if err != nil {
		return domain.OrderLine{}, fmt.Errorf("invalid linked quantity: %w", err)
	}
	unitPrice, err := parseDecimal(cell(record, cols["unitPrice"]))
	if err != nil {
		return domain.OrderLine{}, fmt.Errorf("invalid unit price: %w", err)
	}
	altDelivery, err := parseInt(cell(record, cols["altDelivery"]))
	if err != nil {
		return domain.OrderLine{}, fmt.Errorf("invalid delivery address flag: %w", err)
	}

	return domain.OrderLine{
		ManifestCode:     cell(record, cols["manifestCode"]),
		ManifestNotes:    cell(record, cols["manifestNotes"]),
		ManifestDate:     cell(record, cols["manifestDate"]),
		OrderNumber:      cell(record, cols["orderNumber"]),
		Customer:         cell(record, cols["customer"]),
		OrderDate:        cell(record, cols["orderDate"]),
		ProductCode:      cell(record, cols["productCode"]),
		Description:      cell(record, cols["description"]),
		Unit:             cell(record, cols["unit"]),
		QtyOrdered:       qtyOrdered,
		QtyLinked:        qtyLinked,
		ProductType:      cell(record, cols["productType"]),
		UnitPrice:        unitPrice,
		DeliveryDate:     cell(record, cols["deliveryDate"]),
		City:             cell(record, cols["city"]),
		State:            cell(record, cols["state"]),
		DeliveryMethod:   cell(record, cols["method"]),
		StoreRequisition: parseYes(cell(record, cols["storeReq"])),
		AltDelivery:      altDelivery,
		CustomerCity:     cell(record, cols["customerCity"]),
		CustomerState:    cell(record, cols["customerState"]),
		DeliveryCity:     cell(record, cols["deliveryCity"]),
		DeliveryState:    cell(record, cols["deliveryState"]),
		Address:          cell(record, cols["address"]),
	}, nil
}

// readAll parses the file with the delimiter sniffed from the header line.
// Some ERP screens export comma separated files, others semicolon.
func readAll(r io.Reader) ([][]string, error) {
	buffered := bufio.NewReader(r)
	reader := csv.NewReader(buffered)
	reader.Comma = sniffDelimiter(buffered)
	reader.FieldsPerRecord = -1
	reader.LazyQuotes = true
	return reader.ReadAll()
}

func sniffDelimiter(r *bufio.Reader) rune {
	peek, _ := r.Peek(4096)
	if idx := strings.IndexByte(string(peek), '\n'); idx >= 0 {
		peek = peek[:idx]
	}
	if strings.Count(string(peek), ";") > strings.Count(string(peek), ",") {
		return ';'
	}
	return ','
}

// resolveHeader maps each field to its column index, or -1 when no alias
// matches. Matching ignores case, accents and surrounding whitespace.
func resolveHeader(header []string, aliases map[string][]string) map[string]int {
	byName := make(map[string]int, len(header))
	for i, h := range header {
		byName[domain.NormalizeText(h)] = i
	}

	cols := make(map[string]int, len(aliases))
	for field, names := range aliases {
		cols[field] = -1
		for _, name := range names {
			if i, ok := byName[domain.NormalizeText(name)]; ok {
				cols[field] = i
				break
			}
		}
	}
	return cols
}

func cell(record []string, idx int) string {
	if idx < 0 || idx >= len(record) {
		return ""
	}
	return strings.TrimSpace(record[idx])
}

// parseDecimal accepts both "1234.5" and the Brazilian "1.234,5" notation.
func parseDecimal(s string) (decimal.Decimal, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return decimal.Zero, nil
	}
	if strings.Contains(s, ",") {
		s = strings.ReplaceAll(s, ".", "")
		s = strings.ReplaceAll(s, ",", ".")
	}
	return decimal.NewFromString(s)
}

func parseInt(s string) (int, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return 0, nil
	}
	d, err := parseDecimal(s)
	if err != nil {
		return 0, err
	}
	return int(d.IntPart()), nil
}

func parseYes(s string) bool {
	return strings.Contains(strings.ToLower(s), "sim")
}

// Spreadsheet tools export numeric id columns as "123.0"; strip the
// fractional part when the value is a whole number.
func parseIdentifier(s string) string {
	s = strings.TrimSpace(s)
	if f, err := strconv.ParseFloat(s, 64); err == nil && f == float64(int64(f)) {
		return strconv.FormatInt(int64(f), 10)
	}
	return s
}
