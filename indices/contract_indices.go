package indices

import (
	"fmt"

	"archon/client/es"
	"archon/domain"
	"archon/session"

	"github.com/fundwit/go-commons/types"
	"github.com/sirupsen/logrus"
)

var ContractIndexName = "contracts"

type ContractDocument struct {
	domain.Contract
}

type BatchActionError map[types.ID]error

func (e BatchActionError) Error() string {
	return fmt.Sprintf("%v", map[types.ID]error(e))
}

func IndexContracts(contracts []domain.Contract, s *session.Session) error {
	docs := make([]ContractDocument, 0, len(contracts))
	for _, c := range contracts {
		docs = append(docs, ContractDocument{Contract: c})
	}

	if err := saveContractDocuments(docs, s); err != nil {
		return err
	}
	return nil
}

func saveContractDocuments(docs []ContractDocument, s *session.Session) BatchActionError {
	errs := BatchActionError{}

	for _, doc := range docs {
		if err := es.IndexFunc(ContractIndexName, doc.ID, doc, s); err != nil {
			errs[doc.ID] = err
			logrus.Warnf("index contract %d %s %s\n", doc.ID, doc.ContractNumber, err)
		} else {
			logrus.Infof("index contract %d %s successfully\n", doc.ID, doc.ContractNumber)
		}
	}
	if len(errs) == 0 {
		return nil
	}
	return errs
}
