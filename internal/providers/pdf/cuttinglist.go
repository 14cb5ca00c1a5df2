package pdf

import (
	"bytes"
	"context"
	"io"

	"github.com/johnfercher/maroto/v2"
	"github.com/johnfercher/maroto/v2/pkg/components/text"
	"github.com/johnfercher/maroto/v2/pkg/config"
	"github.com/johnfercher/maroto/v2/pkg/consts/align"
	"github.com/johnfercher/maroto/v2/pkg/consts/fontstyle"
	"github.com/johnfercher/maroto/v2/pkg/props"
	"github.com/smallbiznis/meatline/internal/cuttinglist"
)

// CuttingListData carries the pre-ordered rows for one delivery date.
// Row order and grouping are decided by the layout engine, not here.
type CuttingListData struct {
	Title string
	Rows  []cuttinglist.Row
}

func (p *marotoProvider) GenerateCuttingList(ctx context.Context, data CuttingListData) (io.Reader, error) {
	cfg := config.NewBuilder().
		WithPageNumber(props.PageNumber{
			Pattern: "Page {current} of {total}",
			Place:   props.RightBottom,
		}).
		Build()

	m := maroto.New(cfg)

	m.AddRow(14,
		text.NewCol(12, data.Title, props.Text{
			Size:  18,
			Style: fontstyle.Bold,
			Align: align.Center,
		}),
	)

	for i, row := range data.Rows {
		labelStyle := props.Text{Size: 10}
		if i == 0 || (i > 0 && data.Rows[i-1] == (cuttinglist.Row{})) {
			// Lead row of a customer block carries the customer name.
			labelStyle = props.Text{Size: 11, Style: fontstyle.Bold}
		}
		m.AddRow(9,
			text.NewCol(4, row.Label, labelStyle),
			text.NewCol(4, row.Product, props.Text{Size: 10}),
			text.NewCol(2, row.Quantity, props.Text{Size: 10, Align: align.Right}),
			text.NewCol(2, row.Spare, props.Text{Size: 10}),
		)
	}

	doc, err := m.Generate()
	if err != nil {
		return nil, err
	}
	return bytes.NewReader(doc.GetBytes()), nil
}
