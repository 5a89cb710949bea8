package search

import (
	"encoding/json"
	"fmt"
	"strings"
	"time"

	"archon/client/es"
	"archon/domain"
	"archon/domain/contract"
	"archon/indices"
	"archon/session"
)

var SearchContractsFunc = SearchContracts

// SearchContracts answers a contract query from the search index.
// Statuses are recomputed on every hit before the status filters apply,
// exactly like the database-backed query.
func SearchContracts(q domain.ContractQuery, s *session.Session) ([]domain.Contract, error) {
	filters := make([]es.H, 0, 4)
	if q.Number != "" {
		filters = append(filters, es.H{"match": es.H{"contractNumber": es.H{"query": q.Number, "operator": "AND"}}})
	}
	if q.ClientName != "" {
		filters = append(filters, es.H{"match": es.H{"clientName": es.H{"query": q.ClientName, "operator": "AND"}}})
	}

	sorts := make([]es.H, 0, 1)
	sorts = append(sorts, es.H{"createTime": es.H{"order": "desc"}})

	root := es.H{"bool": es.H{"filter": filters}}
	r, err := es.SearchFunc(indices.ContractIndexName, es.H{"size": 10000, "query": root, "sort": sorts}, s)
	if err != nil {
		return nil, err
	}

	now := time.Now()
	records := make([]domain.Contract, 0, len(r.Hits.Hits))
	for _, hit := range r.Hits.Hits {
		record := domain.Contract{}
		if err := json.NewDecoder(strings.NewReader(string(hit.Source))).Decode(&record); err != nil {
			return nil, fmt.Errorf(string(hit.Source))
		}

		contract.RefreshDerivedState(&record, now)
		if q.ProjectStatus != "" && string(record.ProjectStatus) != q.ProjectStatus {
			continue
		}
		if q.ProfitStatus != "" && string(record.ProfitStatus) != q.ProfitStatus {
			continue
		}
		records = append(records, record)
	}
	return records, nil
}
