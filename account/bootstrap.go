package account

import (
	"archon/authority"
	"archon/idgen"
	"archon/persistence"

	"github.com/fundwit/go-commons/types"
	"github.com/jinzhu/gorm"
	"github.com/sirupsen/logrus"
)

type seedUser struct {
	Email      string
	Password   string
	Name       string
	Role       string
	Department string
}

var seedUsers = []seedUser{
	{Email: "sadi@arc.com", Password: "12345678", Name: "Sadi (CEO)", Role: authority.RoleCeo, Department: "Executive"},
	{Email: "maureen.bangu@ar-consurt-world.com", Password: "12345678", Name: "Maureen Bangu", Role: authority.RoleFinance, Department: "Finance"},
	{Email: "juma.h.kasele@gmail.com", Password: "11223344", Name: "Juma H. Kasele", Role: authority.RoleOperations, Department: "Operations & Quality"},
	{Email: "john.mwamba@arc.com", Password: "12345678", Name: "John Mwamba", Role: authority.RoleWorker, Department: "Staff"},
	{Email: "grace.kimaro@arc.com", Password: "12345678", Name: "Grace Kimaro", Role: authority.RoleWorker, Department: "Staff"},
	{Email: "peter.massawe@arc.com", Password: "12345678", Name: "Peter Massawe", Role: authority.RoleWorker, Department: "Staff"},
}

// Bootstrap seeds the default ceo, officers and sample workers. Existing
// accounts are left alone, so it is safe to run on every start.
func Bootstrap() error {
	db := persistence.ActiveDataSourceManager.GormDB(nil)

	for _, seed := range seedUsers {
		existing := User{}
		err := db.Where("email = ?", seed.Email).First(&existing).Error
		if err == nil {
			continue
		}
		if err != gorm.ErrRecordNotFound {
			return err
		}

		user := User{
			ID:     idgen.NextID(userIdWorker),
			Email:  seed.Email,
			Secret: HashSha256(seed.Password),

			Name:       seed.Name,
			Role:       seed.Role,
			Department: seed.Department,
			Avatar:     DefaultAvatarURL(seed.Name, seed.Role),
			Active:     true,
			CreateTime: types.CurrentTimestamp(),
		}
		if err := db.Create(&user).Error; err != nil {
			return err
		}
		logrus.Infof("seed account %s (%s) created", user.Email, user.Role)
	}
	return nil
}
