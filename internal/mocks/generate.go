package mocks

//go:generate mockery --name Transactor --srcpkg github.com/logistics-lab/palletbook/internal/core/storage --output ./storage --outpkg storagemocks --with-expecter
//go:generate mockery --name RecordQuerier --srcpkg github.com/logistics-lab/palletbook/internal/core/storage --output ./storage --outpkg storagemocks --with-expecter
//go:generate mockery --name SummaryReader --srcpkg github.com/logistics-lab/palletbook/internal/core/storage --output ./storage --outpkg storagemocks --with-expecter
